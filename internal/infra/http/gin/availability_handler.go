package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	AvailabilityApp "pnjpremium/internal/app/handlers/availability"
	"pnjpremium/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

// Check answers GET /pnj/:id/availability?date=2026-09-01&start=14:00&duration=90.
func (h AvailabilityHandler) Check(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
		return
	}
	result, err := queries.Ask[AvailabilityApp.CheckAvailabilityQuery, AvailabilityApp.CheckAvailabilityResult](
		c.Request.Context(), h.Queries, AvailabilityApp.CheckAvailabilityQuery{
			PNJID:           c.Param("id"),
			Date:            date,
			Start:           c.Query("start"),
			DurationMinutes: duration,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
