// Package jwt inspects auth tokens issued by the scoring service without
// verifying their signature. The client never holds the signing key; it only
// reads the expiry to decide whether a stored session is still worth
// restoring.
package jwt
