package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/logger"
	"watch-tracker/infrastructure/realtime"
	"watch-tracker/infrastructure/utils"
	"watch-tracker/usecase"

	"github.com/gin-gonic/gin"
)

// ITrackerHandler defines the HTTP handlers of the local tracker API
type ITrackerHandler interface {
	// Video log
	ListVideos(ctx *gin.Context)
	AddVideo(ctx *gin.Context)
	RemoveVideo(ctx *gin.Context)

	// Goals
	GetGoal(ctx *gin.Context)
	SetGoal(ctx *gin.Context)
	SetMonthlyGoal(ctx *gin.Context)

	// Progress
	GetProgress(ctx *gin.Context)
	GetMonthlyProgress(ctx *gin.Context)
	RecomputeMonthly(ctx *gin.Context)
	StreamProgress(ctx *gin.Context)

	Healthz(ctx *gin.Context)
}

// TrackerHandler implements ITrackerHandler over the tracker use case
type TrackerHandler struct {
	tracker usecase.ITrackerUseCase
	hub     *realtime.ProgressHub
}

func NewTrackerHandler(tracker usecase.ITrackerUseCase, hub *realtime.ProgressHub) ITrackerHandler {
	return &TrackerHandler{tracker: tracker, hub: hub}
}

type addVideoRequest struct {
	URL string `json:"url"`
}

// goalRequest accepts minutes as a JSON number or as the raw text of an input field.
type goalRequest struct {
	Minutes json.RawMessage `json:"minutes"`
}

func (r goalRequest) parse() (int, error) {
	return usecase.ParseGoalInput(strings.Trim(string(r.Minutes), `"`))
}

// ListVideos handles GET /api/videos
func (h *TrackerHandler) ListVideos(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": h.tracker.Videos()})
}

// AddVideo handles POST /api/videos
func (h *TrackerHandler) AddVideo(ctx *gin.Context) {
	var req addVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	record, err := h.tracker.AddVideo(ctx.Request.Context(), req.URL)
	if err != nil {
		h.writeError(ctx, err, record)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": record})
}

// RemoveVideo handles DELETE /api/videos/:id
func (h *TrackerHandler) RemoveVideo(ctx *gin.Context) {
	removed, err := h.tracker.RemoveVideo(ctx.Request.Context(), ctx.Param("id"))
	data := gin.H{"id": ctx.Param("id"), "removed": removed}
	if err != nil {
		h.writeError(ctx, err, data)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// GetGoal handles GET /api/goal
func (h *TrackerHandler) GetGoal(ctx *gin.Context) {
	goal := h.tracker.Goal()
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"minutes": goal, "display": utils.FormatMinutes(goal)}})
}

// SetGoal handles PUT /api/goal
func (h *TrackerHandler) SetGoal(ctx *gin.Context) {
	var req goalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	minutes, err := req.parse()
	if err != nil {
		h.writeError(ctx, err, nil)
		return
	}

	data := gin.H{"minutes": minutes, "display": utils.FormatMinutes(minutes)}
	if err := h.tracker.SetGoal(ctx.Request.Context(), minutes); err != nil {
		h.writeError(ctx, err, data)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// SetMonthlyGoal handles PUT /api/progress/monthly/:month
func (h *TrackerHandler) SetMonthlyGoal(ctx *gin.Context) {
	var req goalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	minutes, err := req.parse()
	if err != nil {
		h.writeError(ctx, err, nil)
		return
	}

	bucket, err := h.tracker.SetMonthlyGoal(ctx.Request.Context(), ctx.Param("month"), minutes)
	if err != nil {
		h.writeError(ctx, err, bucket)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": bucket})
}

// GetProgress handles GET /api/progress
func (h *TrackerHandler) GetProgress(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": h.tracker.Snapshot()})
}

// GetMonthlyProgress handles GET /api/progress/monthly
func (h *TrackerHandler) GetMonthlyProgress(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"current": h.tracker.CurrentMonthProgress(),
			"series":  h.tracker.MonthlySeries(),
		},
	})
}

// RecomputeMonthly handles POST /api/progress/monthly/recompute
func (h *TrackerHandler) RecomputeMonthly(ctx *gin.Context) {
	buckets, err := h.tracker.RecomputeAll(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, err, buckets)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": buckets})
}

// StreamProgress handles GET /api/progress/stream
func (h *TrackerHandler) StreamProgress(ctx *gin.Context) {
	h.hub.Serve(ctx, h.tracker.Snapshot())
}

// Healthz returns OK for health checks
func (h *TrackerHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "busy": h.tracker.Busy()})
}

// writeError maps tracker errors to status codes. A persist failure still
// carries the result of the mutation, which was applied in memory.
func (h *TrackerHandler) writeError(ctx *gin.Context, err error, data any) {
	var (
		resErr     *model.ResolutionError
		persistErr *model.PersistError
	)
	switch {
	case errors.Is(err, model.ErrEmptyURL),
		errors.Is(err, model.ErrInvalidURL),
		errors.Is(err, model.ErrInvalidGoal),
		errors.Is(err, model.ErrInvalidMonth):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "message": err.Error()})
	case errors.Is(err, model.ErrBusy):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Busy", "message": err.Error()})
	case errors.As(err, &resErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve video", "message": resErr.Message})
	case errors.As(err, &persistErr):
		logger.GetLogger().WithField("key", persistErr.Key).WithField("error", err).Error("Mutation applied but not saved")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save", "message": err.Error(), "data": data})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "message": err.Error()})
	}
}
