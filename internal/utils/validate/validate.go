// Package validate wraps a single go-playground validator instance with
// English error translations. Field names in messages come from the
// json tag, so clients see "phone_number" rather than "PhoneNumber".
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic("validate: register translations: " + err.Error())
	}
}

// Struct checks every validate:"..." tag on v. A failure is returned as
// validator.ValidationErrors.
func Struct(v any) error {
	return validate.Struct(v)
}

// Translate maps each failing field (by json name) to a readable message.
func Translate(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Translate(trans)
	}
	return fields
}
