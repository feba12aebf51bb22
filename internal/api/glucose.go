package api

import (
	"context"
	"net/http"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
)

// glucoseRequest always carries notes, empty when the user left none.
type glucoseRequest struct {
	UserID int64   `json:"user_id"`
	Value  float64 `json:"value"`
	Notes  string  `json:"notes"`
}

// GetGlucoseRecords lists the readings of the last days (30 when 0).
func (c *Client) GetGlucoseRecords(ctx context.Context, userID int64, days int) ([]domain.GlucoseRecord, error) {
	var records []domain.GlucoseRecord
	err := c.do(ctx, call{
		op:     "list glucose records",
		method: http.MethodGet,
		route:  "/glucose/{userId}",
		path:   idPath("/glucose", userID, ""),
		query:  daysQuery(days),
		out:    &records,
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.GlucoseRecord{}
	}
	return records, nil
}

// CreateGlucoseRecord logs a new reading.
func (c *Client) CreateGlucoseRecord(ctx context.Context, userID int64, value float64, notes string) (*domain.GlucoseRecord, error) {
	var record domain.GlucoseRecord
	err := c.do(ctx, call{
		op:     "create glucose record",
		method: http.MethodPost,
		route:  "/glucose",
		path:   "/glucose",
		body:   glucoseRequest{UserID: userID, Value: value, Notes: notes},
		out:    &record,
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateGlucoseRecord replaces the value and notes of a reading.
func (c *Client) UpdateGlucoseRecord(ctx context.Context, recordID, userID int64, value float64, notes string) error {
	return c.do(ctx, call{
		op:     "update glucose record",
		method: http.MethodPut,
		route:  "/glucose/{recordId}",
		path:   idPath("/glucose", recordID, ""),
		body:   glucoseRequest{UserID: userID, Value: value, Notes: notes},
	})
}

// DeleteGlucoseRecord removes a reading owned by userID.
func (c *Client) DeleteGlucoseRecord(ctx context.Context, recordID, userID int64) error {
	return c.do(ctx, call{
		op:     "delete glucose record",
		method: http.MethodDelete,
		route:  "/glucose/{recordId}",
		path:   idPath("/glucose", recordID, ""),
		query:  userQuery(userID),
	})
}

// GetGlucoseStats fetches the server-side aggregate of the last days (30 when 0).
func (c *Client) GetGlucoseStats(ctx context.Context, userID int64, days int) (*domain.GlucoseStats, error) {
	var stats domain.GlucoseStats
	err := c.do(ctx, call{
		op:     "glucose stats",
		method: http.MethodGet,
		route:  "/glucose/{userId}/stats",
		path:   idPath("/glucose", userID, "/stats"),
		query:  daysQuery(days),
		out:    &stats,
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
