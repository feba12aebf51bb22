package webapp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
)

type handler struct {
	users     *services.UserService
	glucose   *services.GlucoseService
	food      *services.FoodService
	dashboard *services.DashboardService
	insights  *services.InsightService
	mapper    *presentation.Mapper
}

type diabetesInfoRequest struct {
	DiabetesType  int     `json:"diabetes_type" binding:"required"`
	TargetGlucose float64 `json:"target_glucose" binding:"required"`
}

type glucoseRequest struct {
	Value float64 `json:"value" binding:"required"`
	Notes string  `json:"notes"`
}

type foodRequest struct {
	FoodName string   `json:"food_name" binding:"required"`
	FoodType string   `json:"food_type"`
	Carbs    *float64 `json:"carbs"`
	Calories *int     `json:"calories"`
	Quantity string   `json:"quantity"`
	Notes    string   `json:"notes"`
}

type foodUpdateRequest struct {
	FoodName *string  `json:"food_name"`
	FoodType *string  `json:"food_type"`
	Carbs    *float64 `json:"carbs"`
	Calories *int     `json:"calories"`
	Quantity *string  `json:"quantity"`
	Notes    *string  `json:"notes"`
}

func periodQuery(c *gin.Context) (glucose.Period, bool) {
	p, err := glucose.ParsePeriod(c.Query("period"))
	if err != nil {
		abortWithError(c, apperrors.NewValidationError("Неизвестный период: "+c.Query("period")))
		return "", false
	}
	return p, true
}

func (h *handler) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *handler) updateSettings(c *gin.Context) {
	var req domain.UserSettings
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) updateDiabetesInfo(c *gin.Context) {
	var req diabetesInfoRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateDiabetesInfo(c.Request.Context(), req.DiabetesType, req.TargetGlucose)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) deleteData(c *gin.Context) {
	if err := h.users.DeleteData(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getDashboard(c *gin.Context) {
	d, err := h.dashboard.Dashboard(c.Request.Context(), currentUser(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handler) getGlucose(c *gin.Context) {
	p, ok := periodQuery(c)
	if !ok {
		return
	}
	overview, err := h.glucose.Overview(c.Request.Context(), currentUser(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *handler) getGlucoseChart(c *gin.Context) {
	p, ok := periodQuery(c)
	if !ok {
		return
	}
	chart, err := h.glucose.Chart(c.Request.Context(), currentUser(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (h *handler) getGlucoseMini(c *gin.Context) {
	mini, err := h.glucose.Mini(c.Request.Context(), currentUser(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mini)
}

func (h *handler) createGlucose(c *gin.Context) {
	var req glucoseRequest
	if !bindJSON(c, &req) {
		return
	}
	user := currentUser(c)
	record, err := h.glucose.Add(c.Request.Context(), user, req.Value, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.mapper.ForLanguage(user.LanguageCode).GlucoseItem(*record))
}

func (h *handler) updateGlucose(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req glucoseRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.glucose.Update(c.Request.Context(), currentUser(c), id, req.Value, req.Notes); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) deleteGlucose(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.glucose.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getFood(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, apperrors.NewValidationError("Некорректное количество дней"))
			return
		}
		days = n
	}
	var foodType domain.FoodType
	if raw := c.Query("type"); raw != "" {
		foodType = domain.ParseFoodType(raw)
	}

	items, err := h.food.List(c.Request.Context(), currentUser(c), days, foodType)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) createFood(c *gin.Context) {
	var req foodRequest
	if !bindJSON(c, &req) {
		return
	}
	user := currentUser(c)
	record, err := h.food.Add(c.Request.Context(), user, domain.FoodInput{
		FoodName: req.FoodName,
		FoodType: domain.ParseFoodType(req.FoodType),
		Carbs:    req.Carbs,
		Calories: req.Calories,
		Quantity: req.Quantity,
		Notes:    req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.mapper.ForLanguage(user.LanguageCode).FoodItem(*record))
}

func (h *handler) updateFood(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req foodUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	update := domain.FoodUpdate{
		FoodName: req.FoodName,
		Carbs:    req.Carbs,
		Calories: req.Calories,
		Quantity: req.Quantity,
		Notes:    req.Notes,
	}
	if req.FoodType != nil {
		ft := domain.ParseFoodType(*req.FoodType)
		update.FoodType = &ft
	}

	if err := h.food.Update(c.Request.Context(), currentUser(c), id, update); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) deleteFood(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.food.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getInsight(c *gin.Context) {
	p, ok := periodQuery(c)
	if !ok {
		return
	}
	user := currentUser(c)
	summary, err := h.glucose.Summary(c.Request.Context(), user, p)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.insights.PeriodInsight(c.Request.Context(), user, p, summary))
}
