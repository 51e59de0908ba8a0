package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/spimexpulse/internal/domain/dto"
	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/ingestion"
	"github.com/guttosm/spimexpulse/internal/middleware"
	"github.com/guttosm/spimexpulse/internal/service"
)

// JobSubmitter accepts ingestion jobs for background processing.
type JobSubmitter interface {
	Submit(n int) (*ingestion.Job, error)
}

// Handler provides HTTP handlers for report ingestion and trading result queries.
//
// Responsibilities:
//   - Bind and validate query parameters (422 on failure)
//   - Delegate to the trading service or the ingestion queue
//   - Translate results into response DTOs
type Handler struct {
	svc  service.TradingService
	jobs JobSubmitter
}

// NewHandler constructs a Handler. jobs may be nil when ingestion is not served.
func NewHandler(svc service.TradingService, jobs JobSubmitter) *Handler {
	return &Handler{svc: svc, jobs: jobs}
}

type fetchDataQuery struct {
	N int `form:"n" binding:"required,min=1,max=30"`
}

type lastDatesQuery struct {
	Count int `form:"count" binding:"required,min=1,max=1000"`
}

type filterQuery struct {
	OilID           string `form:"oil_id"`
	DeliveryTypeID  string `form:"delivery_type_id"`
	DeliveryBasisID string `form:"delivery_basis_id"`
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset          int    `form:"offset" binding:"omitempty,min=0"`
}

type dynamicsQuery struct {
	filterQuery
	StartDate time.Time `form:"start_date" binding:"required" time_format:"02-01-2006" time_utc:"1"`
	EndDate   time.Time `form:"end_date" binding:"required" time_format:"02-01-2006" time_utc:"1"`
}

func (q filterQuery) filter() models.TradingFilter {
	return models.TradingFilter{
		OilID:           optional(q.OilID),
		DeliveryTypeID:  optional(q.DeliveryTypeID),
		DeliveryBasisID: optional(q.DeliveryBasisID),
	}
}

func (q filterQuery) page() models.Page {
	return models.Page{Limit: q.Limit, Offset: q.Offset}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// FetchData godoc
// @Summary      Enqueue report ingestion
// @Description  Schedules ingestion of the n most recent daily reports. The job runs in the background.
// @Tags         ingestion
// @Produce      json
// @Param        n    query     int  true  "Number of recent reports (1-30)" minimum(1) maximum(30) example(5)
// @Success      200  {object}  dto.FetchDataResponse
// @Failure      422  {object}  dto.ErrorResponse  "Invalid parameters"
// @Failure      503  {object}  dto.ErrorResponse  "Ingestion queue unavailable"
// @Router       /fetch_data/ [post]
func (h *Handler) FetchData(c *gin.Context) {
	var q fetchDataQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, "n must be an integer between 1 and 30", err)
		return
	}
	if h.jobs == nil {
		middleware.AbortWithError(c, http.StatusServiceUnavailable, "ingestion is not available", nil)
		return
	}

	job, err := h.jobs.Submit(q.N)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ingestion.ErrQueueFull) || errors.Is(err, ingestion.ErrQueueClosed) {
			status = http.StatusServiceUnavailable
		}
		middleware.AbortWithError(c, status, "failed to schedule ingestion", err)
		return
	}

	c.JSON(http.StatusOK, dto.FetchDataResponse{
		Message: "Data fetch started in background",
		JobID:   job.ID.String(),
	})
}

// GetLastTradingDates godoc
// @Summary      Last trading dates
// @Description  Returns up to count distinct trading dates present in storage, newest first.
// @Tags         trading
// @Produce      json
// @Param        count  query     int  true  "How many dates (1-1000)" minimum(1) maximum(1000) example(5)
// @Success      200    {array}   string  "Dates as YYYY-MM-DD"
// @Failure      422    {object}  dto.ErrorResponse
// @Failure      500    {object}  dto.ErrorResponse
// @Router       /get_last_trading_dates/ [get]
func (h *Handler) GetLastTradingDates(c *gin.Context) {
	var q lastDatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, "count must be an integer between 1 and 1000", err)
		return
	}

	dates, err := h.svc.GetLastTradingDates(c.Request.Context(), q.Count)
	if err != nil {
		h.serviceError(c, "failed to load trading dates", err)
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, out)
}

// GetDynamics godoc
// @Summary      Trading dynamics over a period
// @Description  Returns trading results with dates in [start_date, end_date], newest first.
// @Tags         trading
// @Produce      json
// @Param        start_date         query     string  true   "Start date DD-MM-YYYY" example(01-04-2025)
// @Param        end_date           query     string  true   "End date DD-MM-YYYY" example(03-04-2025)
// @Param        oil_id             query     string  false  "Oil id (first 4 chars of the instrument code)" example(A592)
// @Param        delivery_type_id   query     string  false  "Delivery type id (last char of the code)" example(F)
// @Param        delivery_basis_id  query     string  false  "Delivery basis id (chars 5-7 of the code)" example(ACH)
// @Param        limit              query     int     false  "Page size (1-100)" default(10)
// @Param        offset             query     int     false  "Rows to skip" default(0)
// @Success      200                {array}   dto.TradingResultResponse
// @Failure      422                {object}  dto.ErrorResponse
// @Failure      500                {object}  dto.ErrorResponse
// @Router       /get_dynamics/ [get]
func (h *Handler) GetDynamics(c *gin.Context) {
	var q dynamicsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, "invalid query parameters, dates are DD-MM-YYYY", err)
		return
	}

	rng := models.DateRange{Start: q.StartDate, End: q.EndDate}
	results, err := h.svc.GetDynamics(c.Request.Context(), rng, q.filter(), q.page())
	if err != nil {
		h.serviceError(c, "failed to load trading dynamics", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradingResultResponses(results))
}

// GetTradingResults godoc
// @Summary      Latest trading results
// @Description  Returns stored trading results matching the optional filters, newest first.
// @Tags         trading
// @Produce      json
// @Param        oil_id             query     string  false  "Oil id" example(A592)
// @Param        delivery_type_id   query     string  false  "Delivery type id" example(F)
// @Param        delivery_basis_id  query     string  false  "Delivery basis id" example(ACH)
// @Param        limit              query     int     false  "Page size (1-100)" default(10)
// @Param        offset             query     int     false  "Rows to skip" default(0)
// @Success      200                {array}   dto.TradingResultResponse
// @Failure      422                {object}  dto.ErrorResponse
// @Failure      500                {object}  dto.ErrorResponse
// @Router       /get_trading_results/ [get]
func (h *Handler) GetTradingResults(c *gin.Context) {
	var q filterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, "invalid query parameters", err)
		return
	}

	results, err := h.svc.GetTradingResults(c.Request.Context(), q.filter(), q.page())
	if err != nil {
		h.serviceError(c, "failed to load trading results", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradingResultResponses(results))
}

// serviceError maps service validation errors to 422 and everything else to 500.
func (h *Handler) serviceError(c *gin.Context, message string, err error) {
	if errors.Is(err, service.ErrInvalidDateRange) || errors.Is(err, service.ErrInvalidCount) {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}
	middleware.AbortWithError(c, http.StatusInternalServerError, message, err)
}
