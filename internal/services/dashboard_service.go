package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
)

// DashboardService assembles the home screen.
type DashboardService struct {
	api    domain.GlucoseAPI
	mapper *presentation.Mapper
}

func NewDashboardService(api domain.GlucoseAPI, mapper *presentation.Mapper) *DashboardService {
	return &DashboardService{api: api, mapper: mapper}
}

// Dashboard fetches the weekly stats and today's readings concurrently and
// renders only once both have arrived. Either failure fails the whole view.
func (s *DashboardService) Dashboard(ctx context.Context, user *domain.User) (*presentation.Dashboard, error) {
	var (
		stats   *domain.GlucoseStats
		records []domain.GlucoseRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.api.GetGlucoseStats(gctx, user.TelegramID, 7)
		if err != nil {
			return fmt.Errorf("failed to get weekly stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.api.GetGlucoseRecords(gctx, user.TelegramID, 1)
		if err != nil {
			return fmt.Errorf("failed to get recent records: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats == nil {
		stats = &domain.GlucoseStats{}
	}
	d := s.mapper.ForLanguage(user.LanguageCode).Dashboard(user, *stats, latest(records))
	return &d, nil
}
