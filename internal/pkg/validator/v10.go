package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shandysiswandi/stepup/internal/pkg/strcase"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// ruleSuffix maps a validation tag to the message key suffix it produces.
var ruleSuffix = map[string]string{
	"required": "{0}.empty",
	"max":      "{0}.long",
	"gt":       "{0}.invalid",
	"oneof":    "{0}.invalid",
	"uuid4":    "{0}.invalid",
}

// FieldError is one failed field.
type FieldError struct {
	// Field is the snake_case name of the struct field.
	Field string
	// Key is the message key, e.g. "login.username.empty".
	Key string
}

// ValidationError lists failed fields in declaration order.
type ValidationError []FieldError

// Error implements the error interface. It joins the message keys with spaces.
func (vs ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	return strings.Join(vs.Keys(), " ")
}

// Keys returns the message keys in declaration order.
func (vs ValidationError) Keys() []string {
	keys := make([]string, 0, len(vs))
	for _, fe := range vs {
		keys = append(keys, fe.Key)
	}
	return keys
}

// Values returns the field to message key map. Keys of one field are space separated.
func (vs ValidationError) Values() map[string]string {
	out := make(map[string]string, len(vs))
	for _, fe := range vs {
		if prev, ok := out[fe.Field]; ok {
			out[fe.Field] = prev + " " + fe.Key
			continue
		}
		out[fe.Field] = fe.Key
	}
	return out
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewV10Validator constructs a V10Validator whose translations are message keys.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if key := fld.Tag.Get("key"); key != "" && key != "-" {
			return key
		}
		return fld.Name
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	trans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	for tag, text := range ruleSuffix {
		if err := registerKey(validate, trans, tag, text); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

func registerKey(validate *validator.Validate, trans ut.Translator, tag, text string) error {
	return validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Field() + ".invalid"
			}
			return msg
		},
	)
}

// Validate validates a struct and returns a ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	out := make(ValidationError, 0, len(validateErrs))
	for _, fe := range validateErrs {
		key := fe.Translate(v.translator)
		if key == "" || key == fe.Tag() {
			key = fe.Field() + ".invalid"
		}
		out = append(out, FieldError{
			Field: strcase.ToLowerSnake(fe.StructField()),
			Key:   key,
		})
	}

	return out
}
