package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nusastay/service-rental/internal/domain/catalog"
)

// RegisterValidators installs custom binding validators on gin's validator
// engine. Call once at startup, before routes are served.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("billing_unit", func(fl validator.FieldLevel) bool {
		return catalog.Unit(fl.Field().String()).IsValid()
	})
}
