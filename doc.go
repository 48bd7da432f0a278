// Package billinglogix is a client for the BillingLogix REST API.
//
// A Client is bound to one account subdomain and signs every request with a
// short-lived HS256 JWT derived from the account's access and secret keys:
//
//	client, err := billinglogix.New("acme", accessKey, secretKey, nil)
//	if err != nil {
//		return err
//	}
//
//	// Future form.
//	tags, err := client.Get(ctx, "/tags", nil, nil).Wait()
//
//	// Callback form. The callback runs exactly once on its own goroutine.
//	client.Post(ctx, "/tags", map[string]any{"name": "x"}, nil, func(err error, result any) {
//		...
//	})
//
// Per-call failures (validation, authentication, transport, parsing) are
// *APIError values delivered through the future or the callback, never
// returned directly. Non-2xx responses arrive as *UpstreamError carrying the
// decoded response body untouched. Constructor failures are returned from
// New as *APIError of kind KindConfig.
package billinglogix
