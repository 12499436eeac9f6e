// Package validation wraps go-playground/validator with JSON field names and
// English messages.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/storefront/backend/internal/model"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag   = "notblank"
	priceOrderTag = "price_order"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	validate.RegisterStructValidation(costStandardStructValidation, model.CostStandard{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, priceOrderTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case priceOrderTag:
		return "prices must satisfy 0 <= min <= avg <= max"
	default:
		return ""
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func costStandardStructValidation(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(model.CostStandard)
	if !ok {
		return
	}
	if s.MinPrice.IsNegative() || s.MinPrice.GreaterThan(s.AvgPrice) || s.AvgPrice.GreaterThan(s.MaxPrice) {
		sl.ReportError(s.AvgPrice, "avg_price", "AvgPrice", priceOrderTag, "")
	}
}

// Errors maps JSON field names to messages.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates v and returns Errors for field failures.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}
