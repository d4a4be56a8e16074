package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(JSONFieldName)
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// JSONFieldName reports a struct field by its json name
func JSONFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// FromValidatorErrors converts validator errors into a ValidationError keyed
// by json field path; other errors are returned unchanged
func FromValidatorErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	v := &ValidationError{}
	for _, fe := range verrs {
		v.Add(fieldPath(fe.Namespace()), describe(fe))
	}
	return v
}

// fieldPath drops the root struct name: "RecipeRequest.ingredients[0].id" -> "ingredients[0].id"
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "hexcolor":
		return "must be a hex color like #1A2B3C"
	case "slug":
		return "may contain only letters, digits, hyphens and underscores"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return FromValidatorErrors(err)
	}
	return nil
}
