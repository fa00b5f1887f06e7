package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ProductivityHandler interface {
	RecalculateDay(w http.ResponseWriter, r *http.Request)
	Backfill(w http.ResponseWriter, r *http.Request)
	RecalculateEmployee(w http.ResponseWriter, r *http.Request)
	GetScore(w http.ResponseWriter, r *http.Request)
}

type ProductivityHandlerImpl struct {
	scoreService productivity.ScoreService
	batchService productivity.BatchService
	now          func() time.Time
}

func NewProductivityHandler(scoreService productivity.ScoreService, batchService productivity.BatchService) ProductivityHandler {
	return &ProductivityHandlerImpl{
		scoreService: scoreService,
		batchService: batchService,
		now:          time.Now,
	}
}

// RecalculateDay implements ProductivityHandler.
func (h *ProductivityHandlerImpl) RecalculateDay(w http.ResponseWriter, r *http.Request) {
	var req productivity.RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecalculateDay decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.batchService.RecalculateDay(r.Context(), date, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Batch recalculation finished", productivity.ToBatchReportResponse(report))
}

// Backfill implements ProductivityHandler.
func (h *ProductivityHandlerImpl) Backfill(w http.ResponseWriter, r *http.Request) {
	var req productivity.BackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Backfill decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	from, to, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	reports, err := h.batchService.Backfill(r.Context(), from, to, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := make([]productivity.BatchReportResponse, 0, len(reports))
	for _, rep := range reports {
		data = append(data, productivity.ToBatchReportResponse(rep))
	}
	response.SuccessWithMeta(w, data, &response.Meta{TotalItems: int64(len(data))})
}

// RecalculateEmployee implements ProductivityHandler.
func (h *ProductivityHandlerImpl) RecalculateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !validator.IsValidEmployeeID(employeeID) {
		response.BadRequest(w, "Employee ID must be a UUID", nil)
		return
	}

	var req productivity.RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecalculateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	score, err := h.scoreService.CalculateDaily(r.Context(), employeeID, date, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, productivity.ToDailyScoreResponse(score))
}

// GetScore implements ProductivityHandler.
func (h *ProductivityHandlerImpl) GetScore(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !validator.IsValidEmployeeID(employeeID) {
		response.BadRequest(w, "Employee ID must be a UUID", nil)
		return
	}

	date, err := localday.Parse(chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	score, err := h.scoreService.GetDailyScore(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, productivity.ToDailyScoreResponse(score))
}
