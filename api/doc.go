// Package api is the HTTP client for the remote scoring auth service.
//
// It covers the three account endpoints used by the session core: signup,
// login and profile edit. Default credentials (the "token" and "id" request
// headers) are held by the [Client] and changed only through [Client.Attach]
// and [Client.Detach].
//
// # Errors
//
// Non-2xx responses become [*ServiceError] (matching [ErrService]) carrying
// the service-provided message when one is present. Network failures become
// [*TransportError] (matching [ErrTransport]). Nothing is retried here.
package api
