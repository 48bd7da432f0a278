package auth

import (
	"context"
	"os"
)

// Environment variables read by EnvCredentials when no names are given.
const (
	DefaultAccessKeyEnv = "BILLINGLOGIX_ACCESS_KEY"
	DefaultSecretKeyEnv = "BILLINGLOGIX_SECRET_KEY"
)

// Keys is an API access key and its secret.
type Keys struct {
	AccessKey string
	SecretKey string
}

// Valid reports whether both halves are present.
func (k Keys) Valid() bool {
	return k.AccessKey != "" && k.SecretKey != ""
}

// Credentials resolves the keys used to sign a request. Retrieve is called
// once per request, before any network I/O.
type Credentials interface {
	Retrieve(ctx context.Context) (Keys, error)
}

// CredentialsFunc adapts a function to Credentials.
type CredentialsFunc func(ctx context.Context) (Keys, error)

// Retrieve implements Credentials.
func (f CredentialsFunc) Retrieve(ctx context.Context) (Keys, error) {
	return f(ctx)
}

// StaticCredentials always returns the same keys.
type StaticCredentials Keys

// Retrieve implements Credentials.
func (s StaticCredentials) Retrieve(context.Context) (Keys, error) {
	return Keys(s), nil
}

// EnvCredentials reads keys from the environment on every call, so rotated
// keys are picked up without rebuilding the client.
type EnvCredentials struct {
	AccessKeyEnv string
	SecretKeyEnv string
}

// Retrieve implements Credentials. Unset variables yield empty keys; the
// signer reports them as ErrNoCredentials.
func (e EnvCredentials) Retrieve(context.Context) (Keys, error) {
	accessEnv, secretEnv := e.AccessKeyEnv, e.SecretKeyEnv
	if accessEnv == "" {
		accessEnv = DefaultAccessKeyEnv
	}
	if secretEnv == "" {
		secretEnv = DefaultSecretKeyEnv
	}
	return Keys{
		AccessKey: os.Getenv(accessEnv),
		SecretKey: os.Getenv(secretEnv),
	}, nil
}
