package api

import (
	"context"
	"net/http"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
)

type diabetesInfoRequest struct {
	DiabetesType  int     `json:"diabetes_type"`
	TargetGlucose float64 `json:"target_glucose"`
}

// GetUser fetches the user by Telegram id.
func (c *Client) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, call{
		op:     "get user",
		method: http.MethodGet,
		route:  "/user/{telegramId}",
		path:   idPath("/user", telegramID, ""),
		out:    &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateDiabetesInfo sets the diabetes type and target glucose.
func (c *Client) UpdateDiabetesInfo(ctx context.Context, telegramID int64, diabetesType int, targetGlucose float64) error {
	return c.do(ctx, call{
		op:     "update diabetes info",
		method: http.MethodPut,
		route:  "/user/{telegramId}/diabetes-info",
		path:   idPath("/user", telegramID, "/diabetes-info"),
		body:   diabetesInfoRequest{DiabetesType: diabetesType, TargetGlucose: targetGlucose},
	})
}

// UpdateUserSettings applies a partial settings update and returns the
// user as stored by the API.
func (c *Client) UpdateUserSettings(ctx context.Context, telegramID int64, settings domain.UserSettings) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, call{
		op:     "update user settings",
		method: http.MethodPut,
		route:  "/user/{telegramId}",
		path:   idPath("/user", telegramID, ""),
		body:   settings,
		out:    &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUserData removes every record of the user.
func (c *Client) DeleteUserData(ctx context.Context, telegramID int64) error {
	return c.do(ctx, call{
		op:     "delete user data",
		method: http.MethodDelete,
		route:  "/user/{telegramId}/data",
		path:   idPath("/user", telegramID, "/data"),
	})
}
