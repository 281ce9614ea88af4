// Package apitest runs an in-process stand-in for the remote scoring auth
// service. It implements signup, login and profile edit with the same request
// and response shapes as the real service, and lets tests script failures.
package apitest
