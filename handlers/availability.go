package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"slotbook/services/availability"
	"slotbook/services/schedule"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	Service availability.AvailabilityService
	Now     func() time.Time
}

func NewAvailabilityHandler(service availability.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Service: service, Now: time.Now}
}

// ListSlotsHandler returns reservable slots, paged when page or page_size is given.
// Query: provider_id, from, to (RFC 3339), page, page_size.
func (h *AvailabilityHandler) ListSlotsHandler(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", "Invalid query parameters", err.Error())
		return
	}

	page, err := h.Service.ListAvailable(c.Request.Context(), h.Now().UTC(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseFilter(c *gin.Context) (availability.Filter, error) {
	filter := availability.Filter{ProviderID: c.Query("provider_id")}

	if raw := c.Query("from"); raw != "" {
		t, err := schedule.ParseTimestamp(raw)
		if err != nil {
			return filter, fmt.Errorf("from: %w", err)
		}
		filter.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := schedule.ParseTimestamp(raw)
		if err != nil {
			return filter, fmt.Errorf("to: %w", err)
		}
		filter.To = t
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return filter, fmt.Errorf("from must be before to")
	}

	var err error
	if filter.Page, err = intQuery(c, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = intQuery(c, "page_size"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
