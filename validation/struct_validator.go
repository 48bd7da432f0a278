package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/http/httpguts"
)

// Credential and account formats accepted by the BillingLogix API.
var (
	AccountPattern   = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	AccessKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	SecretKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_=\-/]+$`)
)

// Methods lists the HTTP methods the API accepts.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use json tag names for field names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})

		mustRegister("blx_account", matchString(AccountPattern))
		mustRegister("blx_access_key", matchString(AccessKeyPattern))
		mustRegister("blx_secret_key", matchString(SecretKeyPattern))
		mustRegister("http_method", func(fl validator.FieldLevel) bool {
			return IsMethod(fl.Field().String())
		})
		mustRegister("api_path", func(fl validator.FieldLevel) bool {
			return IsAPIPath(fl.Field().String())
		})
		mustRegister("http_header_name", func(fl validator.FieldLevel) bool {
			return httpguts.ValidHeaderFieldName(fl.Field().String())
		})
		mustRegister("http_header_value", func(fl validator.FieldLevel) bool {
			return httpguts.ValidHeaderFieldValue(fl.Field().String())
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// IsMethod reports whether m names a supported method, ignoring case.
func IsMethod(m string) bool {
	upper := strings.ToUpper(m)
	for _, allowed := range Methods {
		if upper == allowed {
			return true
		}
	}
	return false
}

// IsAPIPath reports whether p addresses a resource: after trimming it must
// be neither empty nor the bare root "/".
func IsAPIPath(p string) bool {
	trimmed := strings.TrimSpace(p)
	return trimmed != "" && trimmed != "/"
}

// Validate validates a struct using struct tags and returns an *Error
// listing the failing fields in declaration order.
func Validate(s any) error {
	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &Error{Fields: []FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}}
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   baseField(e.Field()),
			Tag:     e.Tag(),
			Value:   e.Value(),
			Message: formatValidationError(e),
		})
	}
	return &Error{Fields: fieldErrors}
}

// baseField strips map and slice subscripts: "headers[X-Bad]" -> "headers".
func baseField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "eq":
		return "must equal " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "blx_account":
		return "must contain lowercase letters, digits and inner hyphens only"
	case "blx_access_key":
		return "must be alphanumeric"
	case "blx_secret_key":
		return "must contain letters, digits, '_', '=', '-' or '/' only"
	case "http_method":
		return "must be one of: " + strings.Join(Methods, ", ")
	case "api_path":
		return "must address a resource"
	case "http_header_name":
		return "is not a valid header name"
	case "http_header_value":
		return "is not a valid header value"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32) // lowercase
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
