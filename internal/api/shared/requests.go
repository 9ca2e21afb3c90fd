package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/finance-api/internal/domain"
)

// MaxBodyBytes caps the size of request bodies.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON for a request without a body.
var ErrEmptyBody = errors.New("request body is empty")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// strong_password mirrors the domain password rule
	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return domain.ValidatePasswordStrength(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("record_type", func(fl validator.FieldLevel) bool {
		return domain.RecordType(fl.Field().String()).Valid()
	})

	return v
}

// DecodeJSON decodes the request body into v. The body is limited to
// MaxBodyBytes and must hold exactly one JSON value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected data after value")
	}
	return nil
}

// ValidateRequest validates v with its own Validate method if it has one,
// and with struct tags otherwise.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
