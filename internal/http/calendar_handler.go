package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chronobus-api/internal/calendar"
)

const maxCalendarBytes = 5 << 20

// CalendarHandler convierte archivos .ics en eventos JSON.
type CalendarHandler struct {
	logger *zap.Logger
}

func NewCalendarHandler(logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{logger: logger}
}

// Import maneja POST /calendar-ics. El body es el contenido crudo del archivo.
func (h *CalendarHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCalendarBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "File too large."})
			return
		}
		h.logger.Warn("read calendar body failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Could not read request body."})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Empty request body. Send the content of the .ics file.",
		})
		return
	}

	events, err := calendar.Parse(bytes.NewReader(body))
	if err != nil {
		h.logger.Error("parse calendar failed", zap.Error(err), zap.Int("bytes", len(body)))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error parsing the file. Make sure the format is correct.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"eventCount": len(events),
		"events":     events,
	})
}
