package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
)

// Accepted range of a manually entered reading, mmol/L.
const (
	MinGlucoseValue = 1.0
	MaxGlucoseValue = 30.0
)

// ErrInvalidGlucoseValue is returned for readings outside the accepted range.
var ErrInvalidGlucoseValue = apperrors.New(apperrors.ErrorTypeValidation, "INVALID_GLUCOSE",
	"Пожалуйста, введите корректное значение глюкозы (1.0-30.0 ммоль/л)")

// ParseGlucoseValue reads a reading typed by the user. A decimal comma is
// accepted.
func ParseGlucoseValue(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidGlucoseValue
	}
	if err := ValidateGlucoseValue(value); err != nil {
		return 0, err
	}
	return value, nil
}

// ValidateGlucoseValue checks a reading against the accepted range.
func ValidateGlucoseValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidGlucoseValue
	}
	if value < MinGlucoseValue || value > MaxGlucoseValue {
		return ErrInvalidGlucoseValue
	}
	return nil
}

// GlucoseOverview is the glucose page of a period.
type GlucoseOverview struct {
	Period      glucose.Period             `json:"period"`
	PeriodLabel string                     `json:"period_label"`
	Summary     glucose.Summary            `json:"summary"`
	Stats       presentation.StatCards     `json:"stats"`
	Records     []presentation.GlucoseItem `json:"records"`
}

// GlucoseService reads and writes glucose records for the current user.
// Lists are fetched by Telegram id; writes address the API's internal id.
type GlucoseService struct {
	api    domain.GlucoseAPI
	mapper *presentation.Mapper
	now    func() time.Time
}

func NewGlucoseService(api domain.GlucoseAPI, mapper *presentation.Mapper) *GlucoseService {
	return &GlucoseService{api: api, mapper: mapper, now: time.Now}
}

// Records returns the user's records inside the period window.
func (s *GlucoseService) Records(ctx context.Context, user *domain.User, p glucose.Period) ([]domain.GlucoseRecord, error) {
	records, err := s.api.GetGlucoseRecords(ctx, user.TelegramID, p.Days())
	if err != nil {
		return nil, fmt.Errorf("failed to get glucose records: %w", err)
	}
	return glucose.Filter(records, p, s.now()), nil
}

// Summary aggregates the user's records of a period.
func (s *GlucoseService) Summary(ctx context.Context, user *domain.User, p glucose.Period) (glucose.Summary, error) {
	records, err := s.Records(ctx, user, p)
	if err != nil {
		return glucose.Summary{}, err
	}
	return s.mapper.Thresholds().Summarize(glucose.Values(records)), nil
}

// Overview builds the statistics and the record list of a period.
func (s *GlucoseService) Overview(ctx context.Context, user *domain.User, p glucose.Period) (*GlucoseOverview, error) {
	records, err := s.Records(ctx, user, p)
	if err != nil {
		return nil, err
	}

	m := s.mapper.ForLanguage(user.LanguageCode)
	summary := m.Thresholds().Summarize(glucose.Values(records))
	return &GlucoseOverview{
		Period:      p,
		PeriodLabel: m.Formatter().PeriodLabel(p),
		Summary:     summary,
		Stats:       m.StatCards(summary),
		Records:     m.GlucoseList(records),
	}, nil
}

// Chart builds the detailed chart of a period.
func (s *GlucoseService) Chart(ctx context.Context, user *domain.User, p glucose.Period) (presentation.Chart, error) {
	records, err := s.Records(ctx, user, p)
	if err != nil {
		return presentation.Chart{}, err
	}
	return s.mapper.ForLanguage(user.LanguageCode).Chart(records, p), nil
}

// Mini builds the dashboard trend line from the last week.
func (s *GlucoseService) Mini(ctx context.Context, user *domain.User) (presentation.MiniChart, error) {
	records, err := s.Records(ctx, user, glucose.Period7Days)
	if err != nil {
		return presentation.MiniChart{}, err
	}
	return s.mapper.ForLanguage(user.LanguageCode).MiniChart(records), nil
}

// Latest returns the most recent record within the last day, or nil.
func (s *GlucoseService) Latest(ctx context.Context, user *domain.User) (*domain.GlucoseRecord, error) {
	records, err := s.api.GetGlucoseRecords(ctx, user.TelegramID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest glucose record: %w", err)
	}
	return latest(records), nil
}

// Add records a new reading.
func (s *GlucoseService) Add(ctx context.Context, user *domain.User, value float64, notes string) (*domain.GlucoseRecord, error) {
	if err := ValidateGlucoseValue(value); err != nil {
		return nil, err
	}

	record, err := s.api.CreateGlucoseRecord(ctx, user.TelegramID, value, strings.TrimSpace(notes))
	if err != nil {
		return nil, fmt.Errorf("failed to create glucose record: %w", err)
	}
	logger.WithContext(ctx).Info("Glucose record created", "record_id", record.ID, "telegram_id", user.TelegramID)
	return record, nil
}

// Update replaces the value and notes of a record.
func (s *GlucoseService) Update(ctx context.Context, user *domain.User, recordID int64, value float64, notes string) error {
	if err := ValidateGlucoseValue(value); err != nil {
		return err
	}
	if err := s.api.UpdateGlucoseRecord(ctx, recordID, user.ID, value, strings.TrimSpace(notes)); err != nil {
		return fmt.Errorf("failed to update glucose record: %w", err)
	}
	return nil
}

// Delete removes a record.
func (s *GlucoseService) Delete(ctx context.Context, user *domain.User, recordID int64) error {
	if err := s.api.DeleteGlucoseRecord(ctx, recordID, user.ID); err != nil {
		return fmt.Errorf("failed to delete glucose record: %w", err)
	}
	logger.WithContext(ctx).Info("Glucose record deleted", "record_id", recordID, "user_id", user.ID)
	return nil
}

func latest(records []domain.GlucoseRecord) *domain.GlucoseRecord {
	if len(records) == 0 {
		return nil
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.MeasuredAt.After(best.MeasuredAt) {
			best = r
		}
	}
	return &best
}
