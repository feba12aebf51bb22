package interfaces

import (
	"context"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
)

// UserServiceInterface resolves the user behind the identity in ctx
type UserServiceInterface interface {
	Current(ctx context.Context) (*domain.User, error)
}

// GlucoseServiceInterface defines the glucose operations the bot uses
type GlucoseServiceInterface interface {
	Summary(ctx context.Context, user *domain.User, p glucose.Period) (glucose.Summary, error)
	Latest(ctx context.Context, user *domain.User) (*domain.GlucoseRecord, error)
	Add(ctx context.Context, user *domain.User, value float64, notes string) (*domain.GlucoseRecord, error)
}

// FoodServiceInterface defines the food diary operations the bot uses
type FoodServiceInterface interface {
	Add(ctx context.Context, user *domain.User, in domain.FoodInput) (*domain.FoodRecord, error)
}

// InsightServiceInterface defines the contract for recommendation texts
type InsightServiceInterface interface {
	Configured() bool
	RecordInsight(ctx context.Context, user *domain.User, record *domain.GlucoseRecord) services.Insight
	FoodInsight(ctx context.Context, user *domain.User, description string) services.Insight
	AnswerQuestion(ctx context.Context, user *domain.User, question string) services.Insight
}

var (
	_ UserServiceInterface    = (*services.UserService)(nil)
	_ GlucoseServiceInterface = (*services.GlucoseService)(nil)
	_ FoodServiceInterface    = (*services.FoodService)(nil)
	_ InsightServiceInterface = (*services.InsightService)(nil)
)
