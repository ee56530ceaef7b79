package model

import (
	"errors"
	"testing"

	"github.com/splatr/splatr/internal/apperror"
)

func validUser() *User {
	return &User{
		ExternalID: "auth0|64f1c0ffee",
		Email:      "artist@splatr.example",
		Profile:    "https://cdn.splatr.example/avatars/64f1.png",
	}
}

func TestUserValidate_Valid(t *testing.T) {
	if err := validUser().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestUserValidate_ProfileIsOptional(t *testing.T) {
	u := validUser()
	u.Profile = ""
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate() with empty profile error = %v", err)
	}
}

func TestUserValidate_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*User)
		wantField string
	}{
		{
			name:      "missing externalId",
			mutate:    func(u *User) { u.ExternalID = "" },
			wantField: "externalId",
		},
		{
			name:      "missing email",
			mutate:    func(u *User) { u.Email = "" },
			wantField: "email",
		},
		{
			name:      "non-email-shaped email",
			mutate:    func(u *User) { u.Email = "not-an-address" },
			wantField: "email",
		},
		{
			name:      "http profile URL",
			mutate:    func(u *User) { u.Profile = "http://cdn.splatr.example/a.png" },
			wantField: "profile",
		},
		{
			name:      "malformed profile URL",
			mutate:    func(u *User) { u.Profile = "https://" },
			wantField: "profile",
		},
		{
			name:      "relative profile URL",
			mutate:    func(u *User) { u.Profile = "/avatars/a.png" },
			wantField: "profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)

			err := u.Validate()
			if err == nil {
				t.Fatal("Validate() should have failed")
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error %v is not a validation error", err)
			}

			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("error %v is not an *AppError", err)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

func TestArtistValidate(t *testing.T) {
	a := &Artist{Name: "haruko"}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	a.Name = ""
	if err := a.Validate(); err == nil {
		t.Fatal("Validate() should reject an artist without a name")
	}
}
