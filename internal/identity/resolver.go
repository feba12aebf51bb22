package identity

import (
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
)

// Resolver turns the init data of a request into an Identity.
type Resolver struct {
	validator *Validator
	dev       *Identity
}

// NewResolver creates a resolver. A non-zero devTelegramID is used when a
// request carries no init data at all; callers enable it only in development.
func NewResolver(v *Validator, devTelegramID int64) *Resolver {
	r := &Resolver{validator: v}
	if devTelegramID != 0 {
		r.dev = &Identity{
			TelegramID:   devTelegramID,
			FirstName:    "Dev",
			Username:     "dev_user",
			LanguageCode: "ru",
		}
	}
	return r
}

// Resolve validates initData. Init data that is present but invalid is always
// rejected, even with a dev identity configured.
func (r *Resolver) Resolve(initData string) (Identity, error) {
	if initData == "" {
		if r.dev != nil {
			return *r.dev, nil
		}
		return Identity{}, apperrors.ErrMissingIdentity
	}
	data, err := r.validator.Validate(initData)
	if err != nil {
		return Identity{}, err
	}
	return data.User, nil
}
