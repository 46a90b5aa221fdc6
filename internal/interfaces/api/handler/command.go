package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"breakreminder/internal/application/service"
	"breakreminder/internal/domain/constant"
	appErrors "breakreminder/internal/pkg/errors"
	"breakreminder/internal/pkg/logger"
)

// CommandHandler is the HTTP command surface of the reminder loop.
type CommandHandler struct {
	reminderService service.ReminderService
	log             logger.Logger
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(reminderService service.ReminderService, log logger.Logger) *CommandHandler {
	return &CommandHandler{
		reminderService: reminderService,
		log:             log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleCommand applies the command named in the path.
func (h *CommandHandler) HandleCommand(c echo.Context) error {
	name := c.Param("name")
	cmd := constant.ParseCommand(name)
	if cmd == constant.CommandUnknown {
		h.log.Warn(fmt.Sprintf("Unknown command %q received over HTTP", name))
		return c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown command %q", name)})
	}

	resp, err := h.reminderService.Dispatch(c.Request().Context(), cmd)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, appErrors.ErrStoreOperation):
		// The change is applied in memory; only persisting it failed.
		resp.Message = err.Error()
		return c.JSON(http.StatusAccepted, resp)
	case errors.Is(err, appErrors.ErrRateLimited) && !errors.Is(err, appErrors.ErrAlertDelivery):
		resp.Message = err.Error()
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, appErrors.ErrAlertDelivery):
		h.log.Error(fmt.Sprintf("Command %s failed", cmd), err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		h.log.Error(fmt.Sprintf("Command %s failed", cmd), err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// HandleStatus reports the loop snapshot.
func (h *CommandHandler) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.reminderService.Status())
}

// HandleHealth reports liveness. It returns 503 once the loop has stopped.
func (h *CommandHandler) HandleHealth(c echo.Context) error {
	if h.reminderService.Status().State == constant.StateStopped.String() {
		return c.String(http.StatusServiceUnavailable, "stopped")
	}
	return c.String(http.StatusOK, "ok")
}
