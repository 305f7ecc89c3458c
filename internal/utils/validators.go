package utils

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidatePhone accepts a 10 digit Indian mobile number, optionally prefixed.
func ValidatePhone(fl validator.FieldLevel) bool {
	return NormalizePhone(fl.Field().String()) != ""
}

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone", ValidatePhone)
	}
}

func init() {
	RegisterValidators()
}
