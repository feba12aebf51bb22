package services

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
)

var msk = time.FixedZone("MSK", 3*60*60)

func testMapper() *presentation.Mapper {
	return presentation.NewMapper(glucose.DefaultThresholds(), presentation.NewFormatter("ru", msk))
}

func ctxFor(telegramID int64) context.Context {
	return identity.NewContext(context.Background(), identity.Identity{TelegramID: telegramID, FirstName: "Иван"})
}

// fakeGateway records the ids each call was made with.
type fakeGateway struct {
	mu sync.Mutex

	user    *domain.User
	records []domain.GlucoseRecord
	stats   *domain.GlucoseStats
	food    []domain.FoodRecord

	err      error
	statsErr error

	calls        []string
	lastUserID   int64
	lastDays     int
	lastValue    float64
	lastNotes    string
	lastFood     domain.FoodInput
	lastUpdate   domain.FoodUpdate
	lastSettings domain.UserSettings
	lastFoodType domain.FoodType
	getUserCalls int
}

func (f *fakeGateway) record(call string, userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.lastUserID = userID
}

func (f *fakeGateway) GetUser(_ context.Context, telegramID int64) (*domain.User, error) {
	f.record("GetUser", telegramID)
	f.mu.Lock()
	f.getUserCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	return &u, nil
}

func (f *fakeGateway) UpdateDiabetesInfo(_ context.Context, telegramID int64, diabetesType int, target float64) error {
	f.record("UpdateDiabetesInfo", telegramID)
	if f.err != nil {
		return f.err
	}
	f.user.DiabetesType = &diabetesType
	f.user.TargetGlucose = &target
	return nil
}

func (f *fakeGateway) UpdateUserSettings(_ context.Context, telegramID int64, settings domain.UserSettings) (*domain.User, error) {
	f.record("UpdateUserSettings", telegramID)
	f.lastSettings = settings
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	if settings.TargetGlucose != nil {
		u.TargetGlucose = settings.TargetGlucose
	}
	if settings.Notifications != nil {
		u.Notifications = settings.Notifications
	}
	return &u, nil
}

func (f *fakeGateway) DeleteUserData(_ context.Context, telegramID int64) error {
	f.record("DeleteUserData", telegramID)
	return f.err
}

func (f *fakeGateway) GetGlucoseRecords(_ context.Context, userID int64, days int) ([]domain.GlucoseRecord, error) {
	f.record("GetGlucoseRecords", userID)
	f.mu.Lock()
	f.lastDays = days
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeGateway) CreateGlucoseRecord(_ context.Context, userID int64, value float64, notes string) (*domain.GlucoseRecord, error) {
	f.record("CreateGlucoseRecord", userID)
	f.lastValue, f.lastNotes = value, notes
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GlucoseRecord{ID: 100, UserID: 7, Value: value, Notes: notes, MeasuredAt: time.Now()}, nil
}

func (f *fakeGateway) UpdateGlucoseRecord(_ context.Context, _, userID int64, value float64, notes string) error {
	f.record("UpdateGlucoseRecord", userID)
	f.lastValue, f.lastNotes = value, notes
	return f.err
}

func (f *fakeGateway) DeleteGlucoseRecord(_ context.Context, _, userID int64) error {
	f.record("DeleteGlucoseRecord", userID)
	return f.err
}

func (f *fakeGateway) GetGlucoseStats(_ context.Context, userID int64, days int) (*domain.GlucoseStats, error) {
	f.record("GetGlucoseStats", userID)
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeGateway) GetFoodRecords(_ context.Context, userID int64, _ int, foodType domain.FoodType) ([]domain.FoodRecord, error) {
	f.record("GetFoodRecords", userID)
	f.lastFoodType = foodType
	if f.err != nil {
		return nil, f.err
	}
	return f.food, nil
}

func (f *fakeGateway) CreateFoodRecord(_ context.Context, userID int64, input domain.FoodInput) (*domain.FoodRecord, error) {
	f.record("CreateFoodRecord", userID)
	f.lastFood = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.FoodRecord{ID: 5, FoodName: input.FoodName, FoodType: input.FoodType}, nil
}

func (f *fakeGateway) UpdateFoodRecord(_ context.Context, _, userID int64, update domain.FoodUpdate) error {
	f.record("UpdateFoodRecord", userID)
	f.lastUpdate = update
	return f.err
}

func (f *fakeGateway) DeleteFoodRecord(_ context.Context, _, userID int64) error {
	f.record("DeleteFoodRecord", userID)
	return f.err
}

var _ domain.Gateway = (*fakeGateway)(nil)

// fakeGenerator returns a fixed text or error.
type fakeGenerator struct {
	name   string
	text   string
	err    error
	calls  int
	system string
	prompt string
}

func (g *fakeGenerator) Name() string { return g.name }

func (g *fakeGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	g.calls++
	g.system, g.prompt = system, prompt
	return g.text, g.err
}
