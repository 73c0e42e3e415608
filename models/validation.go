package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		registerEnum(validate, "skin_type", SkinTypes)
		registerEnum(validate, "skin_concern", SkinConcerns)
		registerEnum(validate, "avoid_ingredient", AvoidableIngredients)
		registerEnum(validate, "preferred_ingredient", PreferableIngredients)
	})
	return validate
}

// enum values contain spaces, which the builtin oneof tag cannot express
func registerEnum(v *validator.Validate, tag string, allowed []string) {
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return HasLabel(allowed, fl.Field().String())
	})
}

// Validate runs struct-tag validation on v and flattens the failures into one error.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
