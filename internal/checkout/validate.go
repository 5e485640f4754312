package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"froid-storefront/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("delivery_mode", func(fl validator.FieldLevel) bool {
		return model.DeliveryMode(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return model.PaymentMethod(fl.Field().String()).Valid()
	})
	return v
}

// ValidationError lists why a submission cannot proceed. Fields maps
// form field names to messages; Cart carries a cart-level message.
type ValidationError struct {
	Fields map[string]string
	Cart   string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields)+1)
	if e.Cart != "" {
		parts = append(parts, e.Cart)
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets callers match any validation failure on an empty cart with
// model.ErrEmptyCart.
func (e *ValidationError) Is(target error) bool {
	return target == model.ErrEmptyCart && e.Cart != ""
}

// Validate checks the submission preconditions: a non-empty cart and a
// complete form. It never contacts the backend.
func Validate(lines []model.CartLine, form Form) error {
	verr := &ValidationError{Fields: map[string]string{}}

	if len(lines) == 0 {
		verr.Cart = model.ErrEmptyCart.Message
	}

	if err := validate.Struct(form.Normalize()); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("failed to validate checkout form: %w", err)
		}
		for _, fe := range errs {
			verr.Fields[fe.Field()] = validationMessage(fe)
		}
	}

	if verr.Cart == "" && len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "delivery_mode":
		return "is not a known delivery mode"
	case "payment_method":
		return "is not a known payment method"
	}
	return "is invalid"
}
