package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrInvalidRequest is returned for malformed or invalid request bodies.
var ErrInvalidRequest = errors.New("invalid request")

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names in error messages.
	vld.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := vld.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return value.IsPositive()
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'positive_decimal': %w", err)
	}

	return vld, nil
}

func getValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	return validate, errValidate
}

// validateStruct checks payload's validate tags and reports the first failure.
func validateStruct(payload interface{}) error {
	vld, err := getValidator()
	if err != nil {
		return err
	}
	if err := vld.Struct(payload); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return formatValidationError(fieldErrors[0])
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func formatValidationError(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	case "positive_decimal":
		return fmt.Errorf("%w: %s must be a positive amount", ErrInvalidRequest, field)
	case "oneof":
		return fmt.Errorf("%w: %s must be one of [%s]", ErrInvalidRequest, field, fe.Param())
	case "gt":
		return fmt.Errorf("%w: %s must be greater than %s", ErrInvalidRequest, field, fe.Param())
	case "datetime":
		return fmt.Errorf("%w: %s must be a date in %s format", ErrInvalidRequest, field, fe.Param())
	default:
		return fmt.Errorf("%w: %s failed %s validation", ErrInvalidRequest, field, fe.Tag())
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", ErrInvalidRequest, err)
	}
	return nil
}

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return validateStruct(dst)
}
