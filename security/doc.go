// Package security builds the TLS settings used to reach the BillingLogix
// API, for deployments behind an intercepting proxy or requiring client
// certificates.
//
//	cfg := security.TLSConfig{
//	    CAFile:   "/etc/ssl/corp-ca.pem",
//	    CertFile: "/etc/blx/client.pem",
//	    KeyFile:  "/etc/blx/client-key.pem",
//	}
//
//	httpClient, err := cfg.HTTPClient()
package security
