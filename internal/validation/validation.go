package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every field rejection found in one payload, so callers
// learn about all offending fields in a single round trip.
type Error struct {
	Fields []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Field == "" {
			parts[i] = f.Message
			continue
		}
		parts[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator decodes insertion payloads into their write shapes and
// enforces the rules declared on them. A single instance is shared by
// all handlers; it is safe for concurrent use.
type Validator struct {
	rules *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{rules: v}
}

// Decode unmarshals body into dst, which must be a pointer to a write
// shape such as model.CreateUserRequest. Unknown keys are ignored, so
// server-assigned fields like id and created_at never reach the
// destination. Fields are decoded one at a time: a type mismatch on one
// field is reported against that field and does not mask problems with
// the rest of the payload. A non-nil return is always a *Error.
func (v *Validator) Decode(body []byte, dst interface{}) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return &Error{Fields: []FieldError{{Message: "body must be a JSON object"}}}
	}

	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()

	var fields []FieldError
	badType := map[string]bool{}
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		if name == "" {
			continue
		}
		val, ok := raw[name]
		if !ok || string(val) == "null" {
			continue
		}
		if err := json.Unmarshal(val, rv.Field(i).Addr().Interface()); err != nil {
			fields = append(fields, FieldError{Field: name, Message: typeMessage(rt.Field(i).Type)})
			badType[name] = true
		}
	}

	// Rule evaluation still runs so a payload with one malformed field
	// and one missing field reports both. Fields that already failed to
	// decode are left out to avoid double reporting.
	if err := v.rules.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate %T: %w", dst, err)
		}
		for _, fe := range verrs {
			if badType[fe.Field()] {
				continue
			}
			fields = append(fields, FieldError{Field: fe.Field(), Message: ruleMessage(fe)})
		}
	}

	if len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}

// Struct runs rule evaluation without JSON decoding, for requests the
// caller assembles itself, such as multipart uploads.
func (v *Validator) Struct(dst interface{}) error {
	err := v.rules.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %T: %w", dst, err)
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: ruleMessage(fe)})
	}
	return &Error{Fields: fields}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

var timeType = reflect.TypeOf(time.Time{})

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return "must be an RFC 3339 timestamp"
	}
	switch t.Kind() {
	case reflect.String:
		return "must be a string"
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "must be an integer"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	default:
		return "is malformed"
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}
