// Package validation wraps go-playground/validator with the storefront's
// custom rules: Ukrainian phone numbers, half-step rates and the fixed
// color/size palettes.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phoneRe = regexp.MustCompile(`^\+380\d{9,10}$`)
	priceRe = regexp.MustCompile(`^\d+,\d+$`)
	sizeRe  = regexp.MustCompile(`^(XXS|XS|S|M|L|XL|XXL)(,(XXS|XS|S|M|L|XL|XXL))*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must(v.RegisterValidation("ua_phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("half_rate", func(fl validator.FieldLevel) bool {
		r := fl.Field().Float()
		return r >= 1 && r <= 5 && r*2 == float64(int64(r*2))
	}))
	must(v.RegisterValidation("price_range", func(fl validator.FieldLevel) bool {
		return priceRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("size_csv", func(fl validator.FieldLevel) bool {
		return sizeRe.MatchString(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates a tagged request struct. The returned error message is
// safe to echo back to the client.
func Struct(v any) error {
	return validate.Struct(v)
}

// Message flattens a validator error into a single client-facing line.
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "invalid value for: " + strings.Join(fields, ", ")
}
