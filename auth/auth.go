package auth

import "errors"

// ErrNoCredentials is returned when an access key or secret key is missing
// at signing time.
var ErrNoCredentials = errors.New("auth: no authentication data")

// TokenGenerator generates a bearer token for one request. Implementations
// must not cache tokens between calls.
type TokenGenerator interface {
	GenerateToken(keys Keys) (string, error)
}

// TokenGeneratorFunc adapts an ordinary function to the TokenGenerator interface.
type TokenGeneratorFunc func(keys Keys) (string, error)

// GenerateToken implements TokenGenerator.
func (f TokenGeneratorFunc) GenerateToken(keys Keys) (string, error) {
	return f(keys)
}
