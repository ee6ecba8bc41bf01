package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// RegisterValidations adds the stock specific rules to gin's validator so
// request structs can use them in binding tags.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	rules := map[string]validator.Func{
		"direction": func(fl validator.FieldLevel) bool {
			return models.Direction(fl.Field().String()).Valid()
		},
		"stockunit": func(fl validator.FieldLevel) bool {
			return models.Unit(fl.Field().String()).Valid()
		},
		"reorderlevel": func(fl validator.FieldLevel) bool {
			return models.ReorderLevel(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}
