package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// errInvalidJSON marks a body that could not be decoded.
var errInvalidJSON = errors.New("invalid request body")

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return body, nil
}

// decodeJSON unmarshals body into dest and validates the result. Unknown
// fields are accepted; clients post whole order documents back.
func decodeJSON(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return validateValue(dest)
}

// validateValue validates a struct, or each element of a slice of structs.
func validateValue(dest any) error {
	v := reflect.Indirect(reflect.ValueOf(dest))
	if v.Kind() != reflect.Slice {
		return formatValidationErrors(validate.Struct(dest), "")
	}

	fields := map[string]string{}
	for i := 0; i < v.Len(); i++ {
		err := formatValidationErrors(validate.Struct(v.Index(i).Interface()), fmt.Sprintf("[%d].", i))
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			for k, msg := range validationErr.Fields {
				fields[k] = msg
			}
		} else if err != nil {
			return err
		}
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

func formatValidationErrors(err error, prefix string) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[prefix+fieldPath(fe)] = validationMessage(fe)
	}
	return &model.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name from the error namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}

// decodeRequest reads, decodes and validates the body into dest, writing the
// error response itself on failure. It returns the raw body.
func decodeRequest(w http.ResponseWriter, r *http.Request, dest any, logger zerolog.Logger) ([]byte, bool) {
	body, err := readBody(w, r)
	if err == nil {
		if err = decodeJSON(body, dest); err == nil {
			return body, true
		}
	}

	if errors.Is(err, errInvalidJSON) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
	} else {
		writeServiceError(w, err, logger)
	}
	return nil, false
}
