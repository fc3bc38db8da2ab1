package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/model"
)

// rules enforces the document schema declared in the validate tags of
// model.Contact. It runs right before a write, independent of the checks the
// HTTP layer performs on submissions.
var rules = newRules()

func newRules() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// checkRules returns a *ValidationError listing every violated rule, or nil.
func checkRules(contact model.Contact) error {
	err := rules.Struct(contact)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("checking store rules: %w", err)
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("Path `%s` is required.", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("Path `%s` failed rule `%s`.", fe.Field(), fe.Tag()))
		}
	}
	return &ValidationError{Messages: messages}
}
