package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/metrics"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
	"github.com/vladimiradmaev/diabetes-webapp/internal/usage"
)

const (
	InsightUnavailable = "Рекомендации ИИ временно недоступны (не настроен API ключ). Обратитесь к врачу для консультации."
	InsightFailed      = "Не удалось получить рекомендацию от ИИ. Обратитесь к врачу для консультации."
	InsightNoData      = "Недостаточно данных для рекомендации. Записывайте показания глюкозы регулярно."

	FoodInsightUnavailable = "Рекомендации ИИ временно недоступны (не настроен API ключ). Следите за углеводами в рационе."
	FoodInsightFailed      = "Не удалось получить рекомендацию от ИИ. Контролируйте количество углеводов в рационе."

	AnswerUnavailable = "Рекомендации ИИ временно недоступны (не настроен API ключ). Обратитесь к лечащему врачу за консультацией."
	AnswerFailed      = "Не удалось получить ответ от ИИ. Рекомендую обратиться к лечащему врачу за консультацией."
)

// Daily limit messages
const (
	LimitCheckFailed   = "Ошибка проверки лимита запросов. "
	LimitReachedFormat = "🚫 Достигнут дневной лимит AI запросов (%d в день). Лимит обновится завтра. "
	RemainingFormat    = "📊 Осталось AI запросов на сегодня: %d"
	LastRequestText    = "⚠️ Это был последний AI запрос на сегодня"
)

const recordSystemPrompt = `Ты медицинский консультант-диабетолог. Дай короткую рекомендацию (до 150 слов) по показателю глюкозы крови.
Учитывай: норма натощак 3.9-5.5 ммоль/л, через 2 часа после еды до 7.8 ммоль/л.
Не ставь диагнозы, рекомендуй обращение к врачу при критических значениях.
Отвечай по-русски, дружелюбно и профессионально.`

const periodSystemPrompt = `Ты медицинский консультант-диабетолог. Дай короткую рекомендацию (до 150 слов) по статистике глюкозы крови за период.
Учитывай: целевой диапазон 3.9-7.8 ммоль/л, долю измерений в диапазоне, эпизоды низкого и высокого сахара.
Не ставь диагнозы, рекомендуй обращение к врачу при частых низких или высоких значениях.
Отвечай по-русски, дружелюбно и профессионально. Можно использовать markdown-списки.`

const foodSystemPrompt = `Ты диетолог, специализирующийся на диабете. Дай короткую рекомендацию (до 150 слов) по питанию.
Оцени углеводность продуктов, влияние на сахар крови, дай советы по порциям или сочетанию с другими продуктами.
Отвечай по-русски, дружелюбно и практично.`

const questionSystemPrompt = `Ты медицинский консультант по диабету. Отвечай на вопросы о диабете, питании, физической активности.
Давай практические советы (до 200 слов). Не ставь диагнозы, при серьезных симптомах рекомендуй врача.
Отвечай по-русски, понятно и дружелюбно.`

// insightKind groups the prompt and fallback texts of one kind of request
type insightKind struct {
	name        string
	system      string
	unavailable string
	failed      string
	// advice ends the limit messages
	advice string
}

var (
	recordKind = insightKind{
		name: "record", system: recordSystemPrompt,
		unavailable: InsightUnavailable, failed: InsightFailed,
		advice: "Обратитесь к врачу для консультации.",
	}
	periodKind = insightKind{
		name: "period", system: periodSystemPrompt,
		unavailable: InsightUnavailable, failed: InsightFailed,
		advice: "Обратитесь к врачу для консультации.",
	}
	foodKind = insightKind{
		name: "food", system: foodSystemPrompt,
		unavailable: FoodInsightUnavailable, failed: FoodInsightFailed,
		advice: "Контролируйте количество углеводов в рационе.",
	}
	questionKind = insightKind{
		name: "question", system: questionSystemPrompt,
		unavailable: AnswerUnavailable, failed: AnswerFailed,
		advice: "Рекомендую обратиться к лечащему врачу за консультацией.",
	}
)

// Insight is a recommendation text with its sanitized HTML rendering.
type Insight struct {
	Text     string `json:"text"`
	HTML     string `json:"html"`
	Provider string `json:"provider,omitempty"`
	Fallback bool   `json:"fallback"`
	// Remaining is the number of AI requests left today, nil when unlimited.
	Remaining *int `json:"remaining,omitempty"`
	Limited   bool `json:"limited,omitempty"`
}

// InsightService asks the configured generators in order and falls back to
// a static text when none is configured or all of them fail. Every request
// that reaches the generators is counted against the daily limit.
type InsightService struct {
	generators []Generator
	limiter    *usage.Limiter
	format     presentation.Formatter
	markdown   goldmark.Markdown
	sanitizer  *bluemonday.Policy
}

func NewInsightService(generators ...Generator) *InsightService {
	configured := make([]Generator, 0, len(generators))
	for _, g := range generators {
		if g != nil {
			configured = append(configured, g)
		}
	}
	return &InsightService{
		generators: configured,
		format:     presentation.NewFormatter(presentation.LanguageRussian, time.UTC),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// WithLimiter enables the daily request limit
func (s *InsightService) WithLimiter(l *usage.Limiter) *InsightService {
	s.limiter = l
	return s
}

// WithFormatter sets the formatter used for times in prompts
func (s *InsightService) WithFormatter(f presentation.Formatter) *InsightService {
	s.format = f
	return s
}

// Configured reports whether at least one generator is available.
func (s *InsightService) Configured() bool {
	return len(s.generators) > 0
}

// PeriodInsight comments on the statistics of a period.
func (s *InsightService) PeriodInsight(ctx context.Context, user *domain.User, p glucose.Period, summary glucose.Summary) Insight {
	if summary.Count == 0 {
		return s.static(InsightNoData)
	}

	prompt := fmt.Sprintf(`Пациент:
- Диабет: %s
- Целевая глюкоза: %s

Статистика глюкозы за %s:
- Средний уровень: %.1f ммоль/л
- Минимум: %.1f ммоль/л
- Максимум: %.1f ммоль/л
- Измерений: %d
- В целевом диапазоне: %d%%
- Низких: %d, высоких: %d

Дай рекомендацию по этим показателям.`,
		diabetesTypeText(user), targetText(user), p.Label(),
		summary.Average, summary.Min, summary.Max, summary.Count,
		summary.InRangePercent, summary.LowCount, summary.HighCount)

	return s.generate(ctx, user, periodKind, prompt)
}

// RecordInsight comments on a single reading.
func (s *InsightService) RecordInsight(ctx context.Context, user *domain.User, record *domain.GlucoseRecord) Insight {
	prompt := fmt.Sprintf(`Пациент:
- Диабет: %s
- Целевая глюкоза: %s
- Текущий показатель: %.1f ммоль/л
- Время измерения: %s

Дай рекомендацию по этому показателю.`,
		diabetesTypeText(user), targetText(user), record.Value,
		s.format.DateTime(record.MeasuredAt))

	return s.generate(ctx, user, recordKind, prompt)
}

// FoodInsight comments on a free-text meal description.
func (s *InsightService) FoodInsight(ctx context.Context, user *domain.User, description string) Insight {
	prompt := fmt.Sprintf("%s описал прием пищи:\n%q\n\nДай рекомендацию по этой еде для контроля сахара в крови.",
		patientText(user), description)
	return s.generate(ctx, user, foodKind, prompt)
}

// AnswerQuestion answers a free-text question about diabetes.
func (s *InsightService) AnswerQuestion(ctx context.Context, user *domain.User, question string) Insight {
	prompt := fmt.Sprintf("%s спрашивает:\n%q\n\nДай полезный ответ по этому вопросу.",
		patientText(user), question)
	return s.generate(ctx, user, questionKind, prompt)
}

func (s *InsightService) generate(ctx context.Context, user *domain.User, kind insightKind, prompt string) Insight {
	log := logger.WithContext(ctx).With("insight", kind.name)

	if !s.Configured() {
		metrics.InsightsTotal.WithLabelValues("none", "unconfigured").Inc()
		return s.static(kind.unavailable)
	}

	quota, err := s.limiter.Take(ctx, user.TelegramID)
	if err != nil {
		log.Error("AI usage check failed", "error", err)
		return s.static(LimitCheckFailed + kind.advice)
	}
	if !quota.Allowed {
		metrics.InsightsTotal.WithLabelValues("none", "limited").Inc()
		insight := s.static(fmt.Sprintf(LimitReachedFormat, quota.Limit) + kind.advice)
		insight.Limited = true
		zero := 0
		insight.Remaining = &zero
		return insight
	}

	insight := s.static(kind.failed)
	for _, g := range s.generators {
		text, err := g.Generate(ctx, kind.system, prompt)
		if err != nil {
			metrics.InsightsTotal.WithLabelValues(g.Name(), "error").Inc()
			log.Warn("Insight generation failed", "provider", g.Name(), "error", err)
			continue
		}
		metrics.InsightsTotal.WithLabelValues(g.Name(), "ok").Inc()
		insight = Insight{Text: text, Provider: g.Name()}
		break
	}

	if !quota.Unlimited {
		remaining := quota.Remaining
		insight.Remaining = &remaining
		if remaining > 0 {
			insight.Text += "\n\n" + fmt.Sprintf(RemainingFormat, remaining)
		} else {
			insight.Text += "\n\n" + LastRequestText
		}
	}
	insight.HTML = s.Render(insight.Text)
	return insight
}

// Render converts markdown to HTML safe to inject into the page.
func (s *InsightService) Render(markdown string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return s.sanitizer.Sanitize(markdown)
	}
	return strings.TrimSpace(string(s.sanitizer.SanitizeBytes(buf.Bytes())))
}

func (s *InsightService) static(text string) Insight {
	return Insight{Text: text, HTML: s.Render(text), Fallback: true}
}

func diabetesTypeText(user *domain.User) string {
	if user.DiabetesType == nil {
		return "не указан"
	}
	return fmt.Sprintf("%d типа", *user.DiabetesType)
}

func patientText(user *domain.User) string {
	if user.DiabetesType == nil {
		return "Пациент с диабетом"
	}
	return fmt.Sprintf("Пациент с диабетом %d типа", *user.DiabetesType)
}

func targetText(user *domain.User) string {
	if user.TargetGlucose == nil {
		return "не указана"
	}
	return fmt.Sprintf("%.1f ммоль/л", *user.TargetGlucose)
}
