package users

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/elimu/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User mirrors the backend user schema.
type User struct {
	ID         string      `json:"_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       string      `json:"role"`
	Phone      null.String `json:"phone,omitempty"`
	Address    null.String `json:"address,omitempty"`
	IsBlocked  bool        `json:"isBlocked"`
	IsVerified bool        `json:"isVerified"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UpdateFields defines what may be modified on an existing User; zero
// fields are left untouched by the backend.
type UpdateFields struct {
	Name       string      `json:"name,omitempty" validate:"omitempty,min=2"`
	Phone      null.String `json:"phone,omitempty" validate:"omitempty,bdphone"`
	Address    null.String `json:"address,omitempty"`
	Role       string      `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	IsVerified *bool       `json:"isVerified,omitempty"`
}

// UpdateInput addresses an update at a specific user.
type UpdateInput struct {
	ID     string
	Fields UpdateFields
}

func (in *UpdateInput) Validate(validate *validator.Validate, translator ut.Translator) error {
	in.Fields.Name = core.CleanString(in.Fields.Name)
	if in.Fields.Phone.Valid {
		in.Fields.Phone.String = core.CleanString(in.Fields.Phone.String)
	}
	if err := validate.Struct(&in.Fields); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}
