package shortener

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// Client-facing validation messages.
const (
	MsgURLRequired = "longUrl is required"
	MsgInvalidURL  = "Invalid URL"
)

// Validator checks that long URLs are syntactically valid absolute URIs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new URL validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns a *ValidationError if rawURL is empty or not an absolute URI.
// Whitespace counts as a value and is rejected as an invalid URL.
// Reachability is never checked.
func (v *Validator) Validate(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Message: MsgURLRequired}
	}

	if err := v.validate.Var(rawURL, "uri"); err != nil {
		return &ValidationError{Message: MsgInvalidURL}
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return &ValidationError{Message: MsgInvalidURL}
	}

	// A bare scheme ("http:", "http://") names nothing.
	if u.Host == "" && u.Opaque == "" && u.Path == "" {
		return &ValidationError{Message: MsgInvalidURL}
	}

	return nil
}
