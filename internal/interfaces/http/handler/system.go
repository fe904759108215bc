package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/multicommerce/backend/internal/infrastructure/scheduler"
	"github.com/multicommerce/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system and maintenance API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	sweeper   *scheduler.SweepScheduler
}

// NewSystemHandler creates a new SystemHandler. The sweeper may be nil
// when the scheduler is disabled.
func NewSystemHandler(sweeper *scheduler.SweepScheduler) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		sweeper:   sweeper,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Commerce Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Commerce Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetSweepStatus godoc
// @Summary      Get expiry sweep scheduler status
// @Description  Returns the scheduler state, the next scheduled run and the statistics of the last completed sweep
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /system/sweep/status [get]
func (h *SystemHandler) GetSweepStatus(c *gin.Context) {
	if h.sweeper == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}
	h.Success(c, h.sweeper.GetStatus())
}

// TriggerSweep godoc
// @Summary      Trigger an expiry sweep
// @Description  Starts a reservation expiry sweep outside the daily schedule. The sweep runs in the background.
// @Tags         system
// @Produce      json
// @Success      202 {object} dto.Response
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /system/sweep/run [post]
func (h *SystemHandler) TriggerSweep(c *gin.Context) {
	if h.sweeper == nil {
		h.Conflict(c, "Expiry sweep scheduler is not enabled")
		return
	}
	if err := h.sweeper.TriggerManualRun(); err != nil {
		h.Conflict(c, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(gin.H{"message": "sweep started"}))
}
