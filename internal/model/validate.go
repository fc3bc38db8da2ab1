package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrMissingField is returned when a required field is absent or blank.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidEmail is returned when the email does not look like local@domain.tld.
	ErrInvalidEmail = errors.New("invalid email address")
)

// emailPattern is a purely syntactic check. Anything without whitespace or a
// second '@' on either side of a single '@', followed by a dotted domain,
// passes. Whitespace is the set isBlank accepts.
var emailPattern = regexp.MustCompile(`^[^\s\v\x{FEFF}\p{Z}@]+@[^\s\v\x{FEFF}\p{Z}@]+\.[^\s\v\x{FEFF}\p{Z}@]+$`)

// isBlank reports whether r is white space or a line terminator. Unlike
// unicode.IsSpace it counts the byte order mark and leaves out U+0085.
func isBlank(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Z, r)
}

func trim(s string) string {
	return strings.TrimFunc(s, isBlank)
}

// FieldError reports which submitted fields failed validation. Kind is
// either ErrMissingField or ErrInvalidEmail.
type FieldError struct {
	Kind   error
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(e.Fields, ", "))
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// Messages returns one client-facing message per offending field.
func (e *FieldError) Messages() []string {
	messages := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		if errors.Is(e.Kind, ErrInvalidEmail) {
			messages = append(messages, field+" is not a valid email address")
		} else {
			messages = append(messages, field+" is required")
		}
	}
	return messages
}

// NewDraft validates the raw values of a submission and returns them
// normalized: every field is trimmed and the email is lower-cased.
//
// Missing fields are reported before a malformed email, so a submission
// with a blank name and a bad email fails with ErrMissingField.
func NewDraft(name, email, subject, message string) (Draft, error) {
	draft := Draft{
		Name:    trim(name),
		Email:   strings.ToLower(trim(email)),
		Subject: trim(subject),
		Message: trim(message),
	}

	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", draft.Name},
		{"email", draft.Email},
		{"subject", draft.Subject},
		{"message", draft.Message},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return Draft{}, &FieldError{Kind: ErrMissingField, Fields: missing}
	}

	if !emailPattern.MatchString(draft.Email) {
		return Draft{}, &FieldError{Kind: ErrInvalidEmail, Fields: []string{"email"}}
	}
	return draft, nil
}
