// Package auth holds the credential contracts of the BillingLogix client.
//
//   - Keys: an access key / secret key pair
//   - Credentials: resolves Keys when a request is about to be signed
//   - TokenGenerator: turns Keys into a bearer token
//
// The HS256 JWT implementation lives in auth/jwt.
package auth
