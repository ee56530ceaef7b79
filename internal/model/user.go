// Package model defines the data structures used throughout the application.
package model

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/splatr/splatr/internal/apperror"
)

// User represents a registered account.
//
// Identity lives at the OIDC provider: ExternalID holds the provider's
// stable subject identifier ("sub" claim) and is immutable once set. The
// storage layer enforces a unique index on it, so a lookup by ExternalID
// returns 0 or 1 records. The internal ID is a Mongo ObjectID and is what
// the session cookie carries.
type User struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ExternalID string              `bson:"externalId" json:"externalId" validate:"required"`
	Email      string              `bson:"email" json:"email" validate:"required,email"`
	Profile    string              `bson:"profile,omitempty" json:"profile,omitempty" validate:"omitempty,https_url"`
	Artist     *primitive.ObjectID `bson:"artist,omitempty" json:"artist,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Profile pictures must be well-formed https URLs. The baked-in "url"
	// rule accepts any scheme, so this registers a stricter one.
	err := validate.RegisterValidation("https_url", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && u.Scheme == "https" && u.Host != ""
	})
	if err != nil {
		panic(err)
	}
}

// jsonNames maps struct fields to their wire names for validation messages.
var jsonNames = map[string]string{
	"ExternalID": "externalId",
	"Email":      "email",
	"Profile":    "profile",
	"Name":       "name",
}

// Validate checks the record's field rules. Returns an
// apperror.ErrValidation error naming the first offending field.
func (u *User) Validate() error {
	return translate("user", validate.Struct(u))
}

func translate(record string, err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := jsonNames[fe.Field()]
	if field == "" {
		field = fe.Field()
	}
	if fe.Tag() == "required" {
		return apperror.ValidationFailed(field, record+"."+field+" is required")
	}
	return apperror.ValidationFailed(field, record+"."+field+" is invalid")
}
