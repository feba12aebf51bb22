package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/session"
	"github.com/vladimiradmaev/diabetes-webapp/internal/usage"
)

var testNow = time.Date(2024, time.January, 10, 12, 0, 0, 0, msk)

func testUser() *domain.User {
	return &domain.User{ID: 7, TelegramID: 42, FirstName: "Иван", LanguageCode: "ru"}
}

func TestParseGlucoseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "5.6", want: 5.6},
		{in: " 6,2 ", want: 6.2},
		{in: "1", want: 1},
		{in: "30", want: 30},
		{in: "0.9", wantErr: true},
		{in: "30.1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "nan", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "-inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGlucoseValue(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidGlucoseValue)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestValidateGlucoseValueRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, ValidateGlucoseValue(v), ErrInvalidGlucoseValue)
	}

	api := &fakeGateway{}
	svc := NewGlucoseService(api, testMapper())
	_, err := svc.Add(ctxFor(42), testUser(), math.NaN(), "")
	assert.ErrorIs(t, err, ErrInvalidGlucoseValue)
	assert.Empty(t, api.calls)
}

func TestUserServiceCurrentUsesSession(t *testing.T) {
	api := &fakeGateway{user: testUser()}
	store := session.NewMemoryStore(time.Hour)
	svc := NewUserService(api, store)

	user, err := svc.Current(ctxFor(42))
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, int64(42), api.lastUserID)

	_, err = svc.Current(ctxFor(42))
	require.NoError(t, err)
	assert.Equal(t, 1, api.getUserCalls, "second call is served from the session")
}

func TestUserServiceRequiresIdentity(t *testing.T) {
	svc := NewUserService(&fakeGateway{user: testUser()}, session.NewMemoryStore(0))

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrMissingIdentity)
	assert.ErrorIs(t, svc.DeleteData(context.Background()), apperrors.ErrMissingIdentity)
}

func TestUserServiceUpdateSettingsReplacesSession(t *testing.T) {
	api := &fakeGateway{user: testUser()}
	store := session.NewMemoryStore(0)
	svc := NewUserService(api, store)
	ctx := ctxFor(42)

	_, err := svc.Current(ctx)
	require.NoError(t, err)

	target := 6.5
	updated, err := svc.UpdateSettings(ctx, domain.UserSettings{TargetGlucose: &target})
	require.NoError(t, err)
	require.NotNil(t, updated.TargetGlucose)

	stored, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, stored.TargetGlucose)
	assert.Equal(t, 6.5, *stored.TargetGlucose)

	bad := -1.0
	_, err = svc.UpdateSettings(ctx, domain.UserSettings{TargetGlucose: &bad})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestUserServiceUpdateDiabetesInfo(t *testing.T) {
	api := &fakeGateway{user: testUser()}
	svc := NewUserService(api, session.NewMemoryStore(0))
	ctx := ctxFor(42)

	_, err := svc.UpdateDiabetesInfo(ctx, 3, 6)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	_, err = svc.UpdateDiabetesInfo(ctx, 1, 0)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	user, err := svc.UpdateDiabetesInfo(ctx, 2, 6.5)
	require.NoError(t, err)
	require.NotNil(t, user.DiabetesType)
	assert.Equal(t, 2, *user.DiabetesType)
	assert.Equal(t, []string{"UpdateDiabetesInfo", "GetUser"}, api.calls)
}

func TestUserServiceDeleteDataDropsSession(t *testing.T) {
	api := &fakeGateway{user: testUser()}
	store := session.NewMemoryStore(0)
	svc := NewUserService(api, store)
	ctx := ctxFor(42)

	_, err := svc.Current(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteData(ctx))

	_, err = store.Get(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestUserServiceDeleteDataKeepsSessionOnFailure(t *testing.T) {
	api := &fakeGateway{user: testUser()}
	store := session.NewMemoryStore(0)
	svc := NewUserService(api, store)
	ctx := ctxFor(42)

	_, err := svc.Current(ctx)
	require.NoError(t, err)

	api.err = apperrors.NewRemoteError(http.StatusInternalServerError, "", "delete_user_data")
	require.Error(t, svc.DeleteData(ctx))

	_, err = store.Get(ctx, 42)
	assert.NoError(t, err)
}

func newGlucoseService(api *fakeGateway) *GlucoseService {
	svc := NewGlucoseService(api, testMapper())
	svc.now = func() time.Time { return testNow }
	return svc
}

func weekRecords() []domain.GlucoseRecord {
	return []domain.GlucoseRecord{
		{ID: 3, Value: 9.1, MeasuredAt: testNow.Add(-2 * time.Hour)},
		{ID: 2, Value: 5.5, MeasuredAt: testNow.Add(-26 * time.Hour)},
		{ID: 1, Value: 3.2, MeasuredAt: testNow.Add(-3 * 24 * time.Hour)},
		{ID: 0, Value: 6.0, MeasuredAt: testNow.Add(-9 * 24 * time.Hour)},
	}
}

func TestGlucoseServiceRecordsAreFilteredByPeriod(t *testing.T) {
	api := &fakeGateway{records: weekRecords()}
	svc := newGlucoseService(api)

	records, err := svc.Records(context.Background(), testUser(), glucose.Period7Days)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, int64(42), api.lastUserID, "lists are fetched by Telegram id")
	assert.Equal(t, 7, api.lastDays)
}

func TestGlucoseServiceOverview(t *testing.T) {
	svc := newGlucoseService(&fakeGateway{records: weekRecords()})

	overview, err := svc.Overview(context.Background(), testUser(), glucose.Period7Days)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.Summary.Count)
	assert.Equal(t, 1, overview.Summary.LowCount)
	assert.Equal(t, 1, overview.Summary.HighCount)
	assert.Equal(t, 33, overview.Summary.InRangePercent)
	assert.Len(t, overview.Records, 3)
	assert.False(t, overview.Stats.Empty)
	assert.Equal(t, "7 дней", overview.PeriodLabel)
}

func TestGlucoseServiceChartAndMini(t *testing.T) {
	svc := newGlucoseService(&fakeGateway{records: weekRecords()})

	chart, err := svc.Chart(context.Background(), testUser(), glucose.Period7Days)
	require.NoError(t, err)
	require.Len(t, chart.Points, 3)
	assert.Less(t, chart.Points[0].Time, chart.Points[2].Time)

	mini, err := svc.Mini(context.Background(), testUser())
	require.NoError(t, err)
	assert.Len(t, mini.Points, 3)
	assert.False(t, mini.Insufficient)
}

func TestGlucoseServiceWritesUseInternalID(t *testing.T) {
	api := &fakeGateway{}
	svc := newGlucoseService(api)
	ctx := context.Background()
	user := testUser()

	_, err := svc.Add(ctx, user, 5.4, "  натощак ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), api.lastUserID)
	assert.Equal(t, "натощак", api.lastNotes)

	require.NoError(t, svc.Update(ctx, user, 100, 6.1, ""))
	assert.Equal(t, int64(7), api.lastUserID)

	require.NoError(t, svc.Delete(ctx, user, 100))
	assert.Equal(t, int64(7), api.lastUserID)

	_, err = svc.Add(ctx, user, 0, "")
	assert.ErrorIs(t, err, ErrInvalidGlucoseValue)
	assert.ErrorIs(t, svc.Update(ctx, user, 100, 45, ""), ErrInvalidGlucoseValue)
}

func TestGlucoseServiceLatest(t *testing.T) {
	svc := newGlucoseService(&fakeGateway{records: weekRecords()})

	r, err := svc.Latest(context.Background(), testUser())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(3), r.ID)

	empty := newGlucoseService(&fakeGateway{})
	r, err = empty.Latest(context.Background(), testUser())
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestFoodService(t *testing.T) {
	api := &fakeGateway{food: []domain.FoodRecord{{ID: 1, FoodName: "Каша", FoodType: domain.FoodTypeBreakfast}}}
	svc := NewFoodService(api, testMapper())
	ctx := context.Background()
	user := testUser()

	items, err := svc.List(ctx, user, 7, domain.FoodTypeBreakfast)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Завтрак", items[0].MealLabel)
	assert.Equal(t, domain.FoodTypeBreakfast, api.lastFoodType)
	assert.Equal(t, int64(42), api.lastUserID)

	_, err = svc.Add(ctx, user, domain.FoodInput{FoodName: "   "})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	negative := -1.0
	_, err = svc.Add(ctx, user, domain.FoodInput{FoodName: "Суп", Carbs: &negative})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.Add(ctx, user, domain.FoodInput{FoodName: " Суп ", FoodType: domain.FoodTypeLunch})
	require.NoError(t, err)
	assert.Equal(t, "Суп", api.lastFood.FoodName)

	name := " Салат "
	require.NoError(t, svc.Update(ctx, user, 5, domain.FoodUpdate{FoodName: &name}))
	assert.Equal(t, int64(7), api.lastUserID)
	assert.Equal(t, "Салат", *api.lastUpdate.FoodName)

	require.NoError(t, svc.Delete(ctx, user, 5))
	assert.Equal(t, int64(7), api.lastUserID)
}

func TestDashboard(t *testing.T) {
	api := &fakeGateway{
		records: weekRecords()[:2],
		stats:   &domain.GlucoseStats{Average: 6.2, Min: 4.4, Max: 9.1, Count: 10},
	}
	svc := NewDashboardService(api, testMapper())

	d, err := svc.Dashboard(context.Background(), testUser())
	require.NoError(t, err)
	assert.Equal(t, "Привет, Иван! 👋", d.Greeting)
	require.NotNil(t, d.Recent)
	assert.Equal(t, int64(3), d.Recent.ID)
	assert.Len(t, d.Stats, 4)
	assert.Equal(t, int64(42), api.lastUserID)
	assert.ElementsMatch(t, []string{"GetGlucoseStats", "GetGlucoseRecords"}, api.calls)
}

func TestDashboardFailsAsAWhole(t *testing.T) {
	api := &fakeGateway{
		records:  weekRecords(),
		statsErr: apperrors.NewRemoteError(http.StatusBadGateway, "", "get_glucose_stats"),
	}
	svc := NewDashboardService(api, testMapper())

	d, err := svc.Dashboard(context.Background(), testUser())
	assert.Nil(t, d)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRemote))
}

func TestInsightUnconfigured(t *testing.T) {
	svc := NewInsightService(nil)
	assert.False(t, svc.Configured())

	insight := svc.RecordInsight(context.Background(), testUser(), &domain.GlucoseRecord{Value: 5.5, MeasuredAt: testNow})
	assert.True(t, insight.Fallback)
	assert.Equal(t, InsightUnavailable, insight.Text)
}

func TestInsightFallsThroughProviders(t *testing.T) {
	failing := &fakeGenerator{name: "gemini", err: errors.New("quota")}
	working := &fakeGenerator{name: "openai", text: "**Хорошо!**\n- пейте воду"}
	svc := NewInsightService(failing, working)

	summary := glucose.Summarize([]float64{5.5, 6.0, 8.2})
	insight := svc.PeriodInsight(context.Background(), testUser(), glucose.Period7Days, summary)

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, "openai", insight.Provider)
	assert.False(t, insight.Fallback)
	assert.Contains(t, insight.HTML, "<strong>Хорошо!</strong>")
	assert.Contains(t, insight.HTML, "<li>пейте воду</li>")
	assert.Contains(t, working.prompt, "Диабет: не указан")
	assert.Contains(t, working.prompt, "7 дней")
	assert.Equal(t, periodSystemPrompt, working.system)
}

func TestInsightAllProvidersFail(t *testing.T) {
	svc := NewInsightService(&fakeGenerator{name: "gemini", err: errors.New("down")})

	insight := svc.PeriodInsight(context.Background(), testUser(), glucose.Period30Days, glucose.Summarize([]float64{6}))
	assert.True(t, insight.Fallback)
	assert.Equal(t, InsightFailed, insight.Text)
}

func TestInsightNoDataSkipsProviders(t *testing.T) {
	gen := &fakeGenerator{name: "gemini", text: "x"}
	svc := NewInsightService(gen)

	insight := svc.PeriodInsight(context.Background(), testUser(), glucose.Period7Days, glucose.Summary{})
	assert.Equal(t, InsightNoData, insight.Text)
	assert.Zero(t, gen.calls)
}

func TestInsightPromptCarriesUserSettings(t *testing.T) {
	gen := &fakeGenerator{name: "gemini", text: "ok"}
	svc := NewInsightService(gen)
	user := testUser()
	dt, target := 2, 6.5
	user.DiabetesType, user.TargetGlucose = &dt, &target

	svc.RecordInsight(context.Background(), user, &domain.GlucoseRecord{Value: 7.2, MeasuredAt: testNow})
	assert.Contains(t, gen.prompt, "Диабет: 2 типа")
	assert.Contains(t, gen.prompt, "Целевая глюкоза: 6.5 ммоль/л")
	assert.Contains(t, gen.prompt, "Текущий показатель: 7.2 ммоль/л")
}

func TestRecordInsightUsesAppTimezone(t *testing.T) {
	gen := &fakeGenerator{name: "gemini", text: "ok"}
	record := &domain.GlucoseRecord{Value: 7.2, MeasuredAt: testNow.UTC()}

	NewInsightService(gen).WithFormatter(testMapper().Formatter()).RecordInsight(context.Background(), testUser(), record)
	assert.Contains(t, gen.prompt, "Время измерения: 10.01.2024 12:00")

	NewInsightService(gen).RecordInsight(context.Background(), testUser(), record)
	assert.Contains(t, gen.prompt, "Время измерения: 10.01.2024 09:00")
}

type failingCounter struct{}

func (failingCounter) Increment(context.Context, int64, string) (int, error) {
	return 0, apperrors.NewStorageError(errors.New("down"))
}

func TestInsightDailyLimit(t *testing.T) {
	gen := &fakeGenerator{name: "gemini", text: "Хорошо"}
	svc := NewInsightService(gen).WithLimiter(usage.NewLimiter(usage.NewMemoryCounter(), 2, time.UTC))
	ctx := context.Background()
	record := &domain.GlucoseRecord{Value: 5.5, MeasuredAt: testNow}

	first := svc.RecordInsight(ctx, testUser(), record)
	assert.Equal(t, "Хорошо\n\n📊 Осталось AI запросов на сегодня: 1", first.Text)
	require.NotNil(t, first.Remaining)
	assert.Equal(t, 1, *first.Remaining)

	second := svc.FoodInsight(ctx, testUser(), "гречка с курицей")
	assert.Equal(t, "Хорошо\n\n⚠️ Это был последний AI запрос на сегодня", second.Text)
	assert.Equal(t, 0, *second.Remaining)

	third := svc.AnswerQuestion(ctx, testUser(), "Можно ли бегать?")
	assert.True(t, third.Limited)
	assert.True(t, third.Fallback)
	assert.Equal(t, "🚫 Достигнут дневной лимит AI запросов (2 в день). Лимит обновится завтра. Рекомендую обратиться к лечащему врачу за консультацией.", third.Text)
	assert.Equal(t, 2, gen.calls)

	other := testUser()
	other.TelegramID = 7
	assert.False(t, svc.AnswerQuestion(ctx, other, "Можно ли бегать?").Limited)
}

func TestInsightLimitCheckFailure(t *testing.T) {
	gen := &fakeGenerator{name: "gemini", text: "Хорошо"}
	svc := NewInsightService(gen).WithLimiter(usage.NewLimiter(failingCounter{}, 10, time.UTC))

	insight := svc.FoodInsight(context.Background(), testUser(), "борщ")
	assert.Equal(t, LimitCheckFailed+"Контролируйте количество углеводов в рационе.", insight.Text)
	assert.Zero(t, gen.calls)
}

func TestInsightUnconfiguredIsNotCounted(t *testing.T) {
	counter := usage.NewMemoryCounter()
	svc := NewInsightService().WithLimiter(usage.NewLimiter(counter, 10, time.UTC))

	assert.Equal(t, FoodInsightUnavailable, svc.FoodInsight(context.Background(), testUser(), "борщ").Text)
	assert.Equal(t, AnswerUnavailable, svc.AnswerQuestion(context.Background(), testUser(), "что такое ХЕ?").Text)

	n, err := counter.Increment(context.Background(), 42, time.Now().UTC().Format(usage.DayLayout))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFoodInsightAndAnswerPrompts(t *testing.T) {
	gen := &fakeGenerator{name: "openai", text: "ok"}
	svc := NewInsightService(gen)
	user := testUser()
	dt := 1
	user.DiabetesType = &dt

	insight := svc.FoodInsight(context.Background(), user, "овсянка с ягодами, 200г")
	assert.Equal(t, foodSystemPrompt, gen.system)
	assert.Contains(t, gen.prompt, "Пациент с диабетом 1 типа описал прием пищи")
	assert.Contains(t, gen.prompt, "овсянка с ягодами, 200г")
	assert.Equal(t, "ok", insight.Text)
	assert.Nil(t, insight.Remaining)

	svc.AnswerQuestion(context.Background(), testUser(), "Можно ли бегать?")
	assert.Equal(t, questionSystemPrompt, gen.system)
	assert.Contains(t, gen.prompt, "Пациент с диабетом спрашивает")

	failing := NewInsightService(&fakeGenerator{name: "gemini", err: errors.New("down")})
	assert.Equal(t, FoodInsightFailed, failing.FoodInsight(context.Background(), user, "борщ").Text)
	assert.Equal(t, AnswerFailed, failing.AnswerQuestion(context.Background(), user, "что такое ХЕ?").Text)
}

func TestRenderSanitizes(t *testing.T) {
	svc := NewInsightService()
	out := svc.Render("hello <script>alert(1)</script>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}

func TestCandidateText(t *testing.T) {
	assert.Empty(t, candidateText(nil))
	assert.Empty(t, candidateText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("Держите "), genai.Text("сахар в норме")}}},
	}}
	assert.Equal(t, "Держите сахар в норме", candidateText(resp))
}

func TestOpenAIGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Всё в порядке  "}}]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	gen := NewOpenAIGeneratorWithConfig(cfg, "")

	text, err := gen.Generate(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Всё в порядке", text)
	assert.Equal(t, "openai", gen.Name())
}

func TestOpenAIGeneratorEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("k")
	cfg.BaseURL = srv.URL
	_, err := NewOpenAIGeneratorWithConfig(cfg, "").Generate(context.Background(), "s", "p")
	assert.ErrorIs(t, err, errEmptyCompletion)
}
