package handlers

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
)

const chatID = 100

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type fakeUsers struct {
	err error
	ids []identity.Identity
}

func (f *fakeUsers) Current(ctx context.Context) (*domain.User, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperrors.ErrMissingIdentity
	}
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: 7, TelegramID: id.TelegramID, FirstName: id.FirstName}, nil
}

type fakeGlucose struct {
	summary glucose.Summary
	latest  *domain.GlucoseRecord
	err     error
	added   []float64
	periods []glucose.Period
}

func (f *fakeGlucose) Summary(_ context.Context, _ *domain.User, p glucose.Period) (glucose.Summary, error) {
	f.periods = append(f.periods, p)
	return f.summary, f.err
}

func (f *fakeGlucose) Latest(context.Context, *domain.User) (*domain.GlucoseRecord, error) {
	return f.latest, f.err
}

func (f *fakeGlucose) Add(_ context.Context, user *domain.User, value float64, notes string) (*domain.GlucoseRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, value)
	return &domain.GlucoseRecord{ID: 1, UserID: user.ID, Value: value, MeasuredAt: time.Now(), Notes: notes}, nil
}

type fakeFood struct {
	err   error
	added []domain.FoodInput
}

func (f *fakeFood) Add(_ context.Context, user *domain.User, in domain.FoodInput) (*domain.FoodRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, in)
	return &domain.FoodRecord{ID: 1, UserID: user.ID, FoodName: in.FoodName, FoodType: in.FoodType}, nil
}

type fakeInsights struct {
	configured bool
	calls      int
	meals      []string
	questions  []string
}

func (f *fakeInsights) Configured() bool { return f.configured }

func (f *fakeInsights) RecordInsight(context.Context, *domain.User, *domain.GlucoseRecord) services.Insight {
	f.calls++
	return services.Insight{Text: "Хороший показатель", Provider: "fake"}
}

func (f *fakeInsights) FoodInsight(_ context.Context, _ *domain.User, description string) services.Insight {
	f.meals = append(f.meals, description)
	return services.Insight{Text: "Следите за порцией", Provider: "fake"}
}

func (f *fakeInsights) AnswerQuestion(_ context.Context, _ *domain.User, question string) services.Insight {
	f.questions = append(f.questions, question)
	return services.Insight{Text: "Да, умеренная нагрузка полезна", Provider: "fake"}
}

type fixture struct {
	sender   *fakeSender
	users    *fakeUsers
	glucose  *fakeGlucose
	food     *fakeFood
	insights *fakeInsights
	states   *state.Manager
	handler  *UpdateHandler
}

func newFixture() *fixture {
	f := &fixture{
		sender:   &fakeSender{},
		users:    &fakeUsers{},
		glucose:  &fakeGlucose{},
		food:     &fakeFood{},
		insights: &fakeInsights{},
		states:   state.NewManager(),
	}
	deps := Dependencies{
		UserService:    f.users,
		GlucoseService: f.glucose,
		FoodService:    f.food,
		InsightService: f.insights,
		Mapper:         presentation.NewMapper(glucose.DefaultThresholds(), presentation.NewFormatter("ru", time.UTC)),
		WebAppURL:      "https://example.com/webapp/",
	}
	f.handler = NewUpdateHandler(f.sender, deps, f.states)
	return f
}

func from() *tgbotapi.User {
	return &tgbotapi.User{ID: 42, FirstName: "Иван", UserName: "ivan", LanguageCode: "ru"}
}

func textUpdate(text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: from(),
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    from(),
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func TestStartCommandSendsMainMenu(t *testing.T) {
	f := newFixture()
	f.states.SetUserState(42, state.WaitingForGlucose)

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("/start")))

	msg := f.sender.last(t)
	assert.Contains(t, msg.Text, "Привет, Иван!")
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, msg.ReplyMarkup)
	assert.Equal(t, state.None, f.states.GetUserState(42))

	require.Len(t, f.users.ids, 1)
	assert.Equal(t, int64(42), f.users.ids[0].TelegramID)
	assert.Equal(t, "ivan", f.users.ids[0].Username)
}

func TestHelpAndUnknownCommands(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("/help")))
	assert.Contains(t, f.sender.last(t).Text, "/stats")

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("/nope")))
	assert.Contains(t, f.sender.last(t).Text, "Неизвестная команда")
}

func TestStatsCommandOffersPeriods(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("/stats")))

	msg := f.sender.last(t)
	assert.Equal(t, keyboards.StatsPeriods(), msg.ReplyMarkup)
}

func TestStatsCallback(t *testing.T) {
	f := newFixture()
	f.glucose.summary = glucose.DefaultThresholds().Summarize([]float64{5.0, 6.0})

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackStats30Days)))

	assert.Equal(t, 1, f.sender.requests)
	assert.Equal(t, []glucose.Period{glucose.Period30Days}, f.glucose.periods)
	text := f.sender.last(t).Text
	assert.Contains(t, text, "Статистика за 30 дней")
	assert.Contains(t, text, "Средний уровень: 5.5 ммоль/л")
	assert.Contains(t, text, "Отличный контроль!")
}

func TestStatsCallbackEmptyPeriod(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackStats7Days)))
	assert.Contains(t, f.sender.last(t).Text, "Нет данных за выбранный период")
}

func TestStatsCallbackUnknownPeriod(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate("stats_365days")))
	assert.Empty(t, f.glucose.periods)
	assert.Contains(t, f.sender.last(t).Text, "Неизвестный период")
}

func TestStatsCallbackRemoteFailure(t *testing.T) {
	f := newFixture()
	f.glucose.err = apperrors.NewTransportError(assert.AnError, "GET /glucose/records")

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackStats7Days)))
	assert.Equal(t, apperrors.MessageTransport, f.sender.last(t).Text)
}

func TestLastRecordCallback(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackLastRecord)))
	assert.Contains(t, f.sender.last(t).Text, "Сегодня измерений ещё не было")

	f.glucose.latest = &domain.GlucoseRecord{ID: 3, Value: 9.1, MeasuredAt: time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC)}
	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackLastRecord)))
	assert.Contains(t, f.sender.last(t).Text, "9.1")
}

func TestAddGlucoseFlow(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackAddGlucose)))
	assert.Equal(t, state.WaitingForGlucose, f.states.GetUserState(42))

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("5,6")))
	assert.Equal(t, []float64{5.6}, f.glucose.added)
	assert.Equal(t, state.None, f.states.GetUserState(42))

	text := f.sender.last(t).Text
	assert.True(t, strings.HasPrefix(text, "✅ Записал: 5.6 ммоль/л"), text)
	assert.NotContains(t, text, "🤖")
}

func TestBareNumberIsAReading(t *testing.T) {
	f := newFixture()
	f.insights.configured = true

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("8.2")))

	assert.Equal(t, []float64{8.2}, f.glucose.added)
	assert.Equal(t, 1, f.insights.calls)
	text := f.sender.last(t).Text
	assert.Contains(t, text, "Высокий уровень глюкозы")
	assert.Contains(t, text, "🤖 Хороший показатель")
}

func TestOutOfRangeReadingRejected(t *testing.T) {
	f := newFixture()
	f.states.SetUserState(42, state.WaitingForGlucose)

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("45")))
	assert.Empty(t, f.glucose.added)
	assert.Contains(t, f.sender.last(t).Text, "1.0-30.0")
	assert.Equal(t, state.WaitingForGlucose, f.states.GetUserState(42))

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("abc")))
	assert.Contains(t, f.sender.last(t).Text, "корректное значение")
}

func TestNaNReadingRejected(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("NaN")))
	assert.Empty(t, f.glucose.added)
	assert.Contains(t, f.sender.last(t).Text, "1.0-30.0")
}

func TestPlainTextWithoutAIGetsHint(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("привет")))
	assert.Equal(t, defaultTextHint, f.sender.last(t).Text)
	assert.Empty(t, f.glucose.added)
	assert.Empty(t, f.insights.questions)
}

func TestShortTextNotUnderstood(t *testing.T) {
	f := newFixture()
	f.insights.configured = true

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("ок")))
	assert.Equal(t, notUnderstoodText, f.sender.last(t).Text)
	assert.Empty(t, f.insights.questions)
}

func TestQuestionAnsweredByAI(t *testing.T) {
	f := newFixture()
	f.insights.configured = true

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("Можно ли бегать при диабете?")))
	assert.Equal(t, []string{"Можно ли бегать при диабете?"}, f.insights.questions)
	assert.Equal(t, "🤖 Да, умеренная нагрузка полезна", f.sender.last(t).Text)
	assert.Empty(t, f.food.added)
}

func TestFoodTextIsLogged(t *testing.T) {
	f := newFixture()
	f.insights.configured = true

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("Съел гречку с курицей")))

	require.Len(t, f.food.added, 1)
	assert.Equal(t, "Съел гречку с курицей", f.food.added[0].FoodName)
	assert.Equal(t, domain.FoodTypeUnspecified, f.food.added[0].FoodType)
	assert.Equal(t, []string{"Съел гречку с курицей"}, f.insights.meals)
	assert.Equal(t, "✅ Записал в дневник питания: Съел гречку с курицей\n\n🤖 Следите за порцией", f.sender.last(t).Text)
}

func TestFoodTextWithoutAI(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("овсянка на завтрак")))
	require.Len(t, f.food.added, 1)
	assert.Equal(t, "✅ Записал в дневник питания: овсянка на завтрак", f.sender.last(t).Text)
	assert.Empty(t, f.insights.meals)
}

func TestFoodSaveFailure(t *testing.T) {
	f := newFixture()
	f.food.err = apperrors.NewTransportError(assert.AnError, "POST /food/records")
	f.states.SetUserState(42, state.WaitingForFood(domain.FoodTypeDinner))

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("рис с овощами")))
	assert.Equal(t, apperrors.MessageTransport, f.sender.last(t).Text)
	assert.Equal(t, state.WaitingForFood(domain.FoodTypeDinner), f.states.GetUserState(42))
}

func TestMealTypeFlow(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackAddFood)))
	assert.Equal(t, keyboards.MealTypes(), f.sender.last(t).ReplyMarkup)

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackFoodLunch)))
	assert.Equal(t, state.WaitingForFood(domain.FoodTypeLunch), f.states.GetUserState(42))
	assert.Contains(t, f.sender.last(t).Text, "Опишите ваш обед")

	require.NoError(t, f.handler.Handle(context.Background(), textUpdate("борщ, 300г")))
	require.Len(t, f.food.added, 1)
	assert.Equal(t, domain.FoodInput{FoodName: "борщ, 300г", FoodType: domain.FoodTypeLunch}, f.food.added[0])
	assert.Equal(t, state.None, f.states.GetUserState(42))
}

func TestUnknownMealTypeCallback(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate("food_brunch")))
	assert.Equal(t, state.None, f.states.GetUserState(42))
	assert.Contains(t, f.sender.last(t).Text, "Неизвестный тип приема пищи")
}

func TestIsFoodDescription(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Съел гречку с курицей", true},
		{"на обед суп", true},
		{"выпил кофе с молоком", true},
		{"ел кашу", true},
		{"Что можно есть на завтрак?", false},
		{"У меня кашель", false},
		{"хотел спросить про инсулин", false},
		{"привет", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, isFoodDescription(tt.text))
		})
	}
}

func TestMainMenuCallbackResetsState(t *testing.T) {
	f := newFixture()
	f.states.SetUserState(42, state.WaitingForGlucose)

	require.NoError(t, f.handler.Handle(context.Background(), callbackUpdate(keyboards.CallbackMainMenu)))
	assert.Equal(t, state.None, f.states.GetUserState(42))
	assert.Contains(t, f.sender.last(t).Text, "Привет, Иван!")
}

func TestMissingSenderGetsRestartHint(t *testing.T) {
	f := newFixture()
	update := textUpdate("5.5")
	update.Message.From = nil

	require.NoError(t, f.handler.Handle(context.Background(), update))
	assert.Equal(t, restartHint, f.sender.last(t).Text)
	assert.Empty(t, f.users.ids)
}

func TestUserLoadFailure(t *testing.T) {
	f := newFixture()
	f.users.err = apperrors.NewRemoteError(500, "Сервер недоступен", "GET /users/42")

	err := f.handler.Handle(context.Background(), textUpdate("/start"))
	require.Error(t, err)
	assert.Equal(t, "Сервер недоступен", f.sender.last(t).Text)
}

func TestIgnoresOtherUpdates(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), tgbotapi.Update{UpdateID: 1}))
	assert.Empty(t, f.sender.sent)
}
