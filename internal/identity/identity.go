// Package identity carries the Telegram user on whose behalf a request runs.
package identity

import (
	"context"
	"net/http"
)

// Header names forwarded to the diabetes API.
const (
	HeaderFirstName    = "X-Telegram-First-Name"
	HeaderLastName     = "X-Telegram-Last-Name"
	HeaderUsername     = "X-Telegram-Username"
	HeaderLanguageCode = "X-Telegram-Language-Code"

	// HeaderInitData is sent by the mini-app page with the raw WebApp init data.
	HeaderInitData = "X-Telegram-Init-Data"
)

// Identity is the Telegram user supplied by the host application.
type Identity struct {
	TelegramID   int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Valid reports whether the identity names a user.
func (i Identity) Valid() bool {
	return i.TelegramID != 0
}

// SetHeaders writes the identity headers onto h.
func (i Identity) SetHeaders(h http.Header) {
	h.Set(HeaderFirstName, i.FirstName)
	h.Set(HeaderLastName, i.LastName)
	h.Set(HeaderUsername, i.Username)
	h.Set(HeaderLanguageCode, i.LanguageCode)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || !id.Valid() {
		return Identity{}, false
	}
	return id, true
}
