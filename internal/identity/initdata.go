package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
)

// InitData is the parsed Telegram WebApp init data.
type InitData struct {
	User     Identity
	QueryID  string
	AuthDate time.Time
	Hash     string
}

// Validator checks init data signed with a bot token.
type Validator struct {
	botToken string
	maxAge   time.Duration
	now      func() time.Time
}

// NewValidator creates a validator. A zero maxAge disables the age check.
func NewValidator(botToken string, maxAge time.Duration) *Validator {
	return &Validator{botToken: botToken, maxAge: maxAge, now: time.Now}
}

// Validate verifies the signature and age of raw init data and returns the
// user it carries.
func (v *Validator) Validate(raw string) (InitData, error) {
	if raw == "" {
		return InitData{}, apperrors.ErrMissingIdentity
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, invalid("malformed init data", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return InitData{}, invalid("init data has no hash", nil)
	}
	expected := Sign(v.botToken, DataCheckString(values))
	if !hmac.Equal([]byte(strings.ToLower(hash)), []byte(expected)) {
		return InitData{}, invalid("init data signature mismatch", nil)
	}

	data, err := parse(values)
	if err != nil {
		return InitData{}, err
	}
	data.Hash = hash

	if v.maxAge > 0 && v.now().Sub(data.AuthDate) > v.maxAge {
		return InitData{}, invalid("init data expired", nil).
			WithContext("auth_date", data.AuthDate)
	}
	return data, nil
}

// DataCheckString builds the string Telegram signs: every field except hash,
// sorted by key, as key=value lines.
func DataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	return strings.Join(lines, "\n")
}

// Sign computes the hex signature of a data check string for a bot token.
func Sign(botToken, dataCheckString string) string {
	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}

func parse(values url.Values) (InitData, error) {
	var data InitData
	data.QueryID = values.Get("query_id")

	if ts := values.Get("auth_date"); ts != "" {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return InitData{}, invalid("invalid auth_date", err)
		}
		data.AuthDate = time.Unix(sec, 0)
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return InitData{}, apperrors.ErrMissingIdentity
	}
	if err := json.Unmarshal([]byte(rawUser), &data.User); err != nil {
		return InitData{}, invalid("invalid user payload", err)
	}
	if !data.User.Valid() {
		return InitData{}, apperrors.ErrMissingIdentity
	}
	return data, nil
}

func invalid(reason string, err error) *apperrors.AppError {
	if err == nil {
		err = errors.New(reason)
	}
	return apperrors.Wrap(err, apperrors.ErrorTypeIdentity, apperrors.ErrInvalidIdentity.Code, apperrors.ErrInvalidIdentity.Message).
		WithContext("reason", reason)
}
