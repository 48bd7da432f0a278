package auth

import (
	"context"
	"errors"
	"testing"
)

func TestKeysValid(t *testing.T) {
	tests := []struct {
		keys Keys
		want bool
	}{
		{Keys{AccessKey: "ABC123", SecretKey: "s3cr3t"}, true},
		{Keys{AccessKey: "ABC123"}, false},
		{Keys{SecretKey: "s3cr3t"}, false},
		{Keys{}, false},
	}
	for _, tc := range tests {
		if got := tc.keys.Valid(); got != tc.want {
			t.Errorf("%+v.Valid() = %v, want %v", tc.keys, got, tc.want)
		}
	}
}

func TestStaticCredentials(t *testing.T) {
	creds := StaticCredentials{AccessKey: "ABC123", SecretKey: "s3cr3t"}
	keys, err := creds.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keys.AccessKey != "ABC123" || keys.SecretKey != "s3cr3t" {
		t.Errorf("unexpected keys %+v", keys)
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv(DefaultAccessKeyEnv, "ENV123")
	t.Setenv(DefaultSecretKeyEnv, "envsecret")

	keys, err := EnvCredentials{}.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keys.AccessKey != "ENV123" || keys.SecretKey != "envsecret" {
		t.Errorf("unexpected keys %+v", keys)
	}

	// rotation is visible on the next call
	t.Setenv(DefaultSecretKeyEnv, "rotated")
	keys, _ = EnvCredentials{}.Retrieve(context.Background())
	if keys.SecretKey != "rotated" {
		t.Errorf("expected rotated secret, got %q", keys.SecretKey)
	}
}

func TestEnvCredentialsCustomNames(t *testing.T) {
	t.Setenv("ACCESS_KEY", "CUSTOM1")
	t.Setenv("SECRET_KEY", "customsecret")

	keys, _ := EnvCredentials{AccessKeyEnv: "ACCESS_KEY", SecretKeyEnv: "SECRET_KEY"}.Retrieve(context.Background())
	if !keys.Valid() || keys.AccessKey != "CUSTOM1" {
		t.Errorf("unexpected keys %+v", keys)
	}
}

func TestEnvCredentialsUnset(t *testing.T) {
	t.Setenv(DefaultAccessKeyEnv, "")
	t.Setenv(DefaultSecretKeyEnv, "")

	keys, err := EnvCredentials{}.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("unset variables are not a retrieval error: %v", err)
	}
	if keys.Valid() {
		t.Error("expected empty keys")
	}
}

func TestCredentialsFunc(t *testing.T) {
	boom := errors.New("vault unavailable")
	creds := CredentialsFunc(func(context.Context) (Keys, error) { return Keys{}, boom })
	if _, err := creds.Retrieve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestTokenGeneratorFunc(t *testing.T) {
	gen := TokenGeneratorFunc(func(k Keys) (string, error) {
		if !k.Valid() {
			return "", ErrNoCredentials
		}
		return "token-for-" + k.AccessKey, nil
	})
	tok, err := gen.GenerateToken(Keys{AccessKey: "A1", SecretKey: "s"})
	if err != nil || tok != "token-for-A1" {
		t.Errorf("unexpected result %q, %v", tok, err)
	}
	if _, err := gen.GenerateToken(Keys{}); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}
