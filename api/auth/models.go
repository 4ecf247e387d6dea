package auth

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/elimu/core"
)

// LoginInput is the login form payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) Validate(validate *validator.Validate, translator ut.Translator) error {
	in.Email = core.CleanString(in.Email, true)
	if err := validate.Struct(in); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,bdphone"`
	Address         string `json:"address" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (in *RegisterInput) Validate(validate *validator.Validate, translator ut.Translator) error {
	in.Name = core.CleanString(in.Name)
	in.Email = core.CleanString(in.Email, true)
	in.Phone = core.CleanString(in.Phone)
	in.Address = core.CleanString(in.Address)

	if err := validate.Struct(in); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}
