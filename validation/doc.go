// Package validation provides the input checks used by the BillingLogix
// client: struct tag validation on top of go-playground/validator with
// BillingLogix-specific tags, and a small programmatic validator that
// collects field errors.
//
// # Struct Tag Validation
//
//	type credentials struct {
//	    Account   string `json:"account" validate:"required,blx_account"`
//	    AccessKey string `json:"access_key" validate:"required,blx_access_key"`
//	}
//	if err := validation.Validate(creds); err != nil {
//	    first := err.(*validation.Error).First()
//	}
//
// Registered tags: blx_account, blx_access_key, blx_secret_key,
// http_method, api_path, http_header_name, http_header_value.
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("account", cfg.Account).Pattern("account", cfg.Account, validation.AccountPattern)
//	err := v.Validate()
package validation
