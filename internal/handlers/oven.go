package handlers

import (
	"errors"
	"net/http"

	"github.com/glockwork/ControLeo2/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK              = "ok"
	statusStarted         = "started"
	statusAborted         = "aborted"
	statusProfileSelected = "profile_selected"

	errStartRun      = "failed to start run"
	errAbortRun      = "failed to abort run"
	errSelectProfile = "failed to select next profile"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status string plus the current oven snapshot.
func (h *Handler) respondWithStatusAndOven(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	resp["oven"] = h.services.Monitoring.Status()
	c.JSON(http.StatusOK, resp)
}

// controlErrorCode maps command rejections to HTTP codes. A rejected command
// is a conflict with the current run state, not a server failure.
func controlErrorCode(err error) int {
	switch {
	case errors.Is(err, service.ErrRunActive),
		errors.Is(err, service.ErrNoActiveRun),
		errors.Is(err, service.ErrSensorFault):
		return http.StatusConflict
	case errors.Is(err, service.ErrLoopStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start a reflow run
// @Description  Starts the selected profile from phase one. Rejected while a run is active or the thermocouple is faulted.
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, oven"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/oven/start [post]
// @Security     BearerAuth
func (h *Handler) startRun(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Control.Start(ctx); err != nil {
		code := controlErrorCode(err)
		if code == http.StatusConflict {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, code, errStartRun, "oven_start_failed", err)
		return
	}
	h.respondWithStatusAndOven(c, statusStarted, gin.H{})
}

// @Summary      Abort the active run
// @Description  Ends the run immediately. Above the safe temperature the oven enters a forced cool-down instead of going idle.
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, oven"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/oven/abort [post]
// @Security     BearerAuth
func (h *Handler) abortRun(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Control.Abort(ctx); err != nil {
		code := controlErrorCode(err)
		if code == http.StatusConflict {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, code, errAbortRun, "oven_abort_failed", err)
		return
	}
	h.respondWithStatusAndOven(c, statusAborted, gin.H{})
}

// @Summary      Select the next profile
// @Description  Rotates to the next profile in the catalog and persists the choice. Rejected while a run is active.
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, profile, oven"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/oven/profile/next [post]
// @Security     BearerAuth
func (h *Handler) nextProfile(c *gin.Context) {
	ctx := c.Request.Context()
	index, err := h.services.Control.NextProfile(ctx)
	if err != nil {
		code := controlErrorCode(err)
		if code == http.StatusConflict {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, code, errSelectProfile, "oven_next_profile_failed", err)
		return
	}
	h.respondWithStatusAndOven(c, statusProfileSelected, gin.H{"profile": index})
}

// @Summary      Get oven status
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/oven/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Status())
}

// @Summary      List reflow profiles
// @Description  Returns every profile in the catalog with its phase table.
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, profiles"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/oven/profiles [get]
// @Security     BearerAuth
func (h *Handler) getProfiles(c *gin.Context) {
	profiles := h.services.Monitoring.Profiles()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(profiles),
		"profiles": profiles,
	})
}
