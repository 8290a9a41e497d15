package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
)

var ErrAdminRequired = errors.New("admin role required")

// InputError carries a message that is safe to return to the client as-is.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return store.ErrInvalidRecord
}

func invalid(format string, args ...interface{}) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates req and turns the first failing field into an InputError.
func (s *Service) check(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "validate request")
	}

	fe := fieldErrs[0]
	field := strings.TrimPrefix(fe.Namespace(), rootName(req)+".")
	switch fe.Tag() {
	case "required":
		return invalid("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return invalid("%s must contain at least %s entries", field, fe.Param())
		}
		return invalid("%s must not be empty", field)
	case "gte":
		return invalid("%s must be at least %s", field, fe.Param())
	case "gt":
		return invalid("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return invalid("%s must be one of: %s", field, fe.Param())
	case "email":
		return invalid("%s must be a valid email address", field)
	default:
		return invalid("%s is invalid", field)
	}
}

func rootName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func requireAdmin(actor domain.Actor, ok bool) error {
	if !ok || actor.Role != domain.RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}
