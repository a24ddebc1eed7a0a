package helpers

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// PeriodLayout is the layout of contest period keys.
const PeriodLayout = "2006-01-02"

// CustomValidator wraps go-playground validator with the contest rules
type CustomValidator struct {
	validate *validator.Validate
}

// NewCustomValidator creates a validator that reports json field names and knows
// the "period" and "notblank" tags.
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("period", validatePeriod)
	v.RegisterValidation("notblank", validateNotBlank)

	return &CustomValidator{validate: v}
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// validatePeriod accepts an empty value or a real calendar date in YYYY-MM-DD form.
func validatePeriod(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	t, err := time.Parse(PeriodLayout, value)
	return err == nil && t.Format(PeriodLayout) == value
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
