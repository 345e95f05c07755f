package ginserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"pnjpremium/internal/app/dto"
	MeApp "pnjpremium/internal/app/handlers/me"
	"pnjpremium/internal/app/queries"
	domainbooking "pnjpremium/internal/domain/booking"
)

type MeHandler struct {
	Queries queries.Bus
}

// PlayerBookings answers GET /me/bookings with optional status, from, to and
// limit query parameters.
func (h MeHandler) PlayerBookings(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	filter, err := parseListFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[MeApp.ListPlayerBookingsQuery, dto.BookingCollection](
		c.Request.Context(), h.Queries, MeApp.ListPlayerBookingsQuery{PlayerID: user.ID, Filter: filter})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PNJBookings is the provider-side view of the same list.
func (h MeHandler) PNJBookings(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	filter, err := parseListFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[MeApp.ListPNJBookingsQuery, dto.BookingCollection](
		c.Request.Context(), h.Queries, MeApp.ListPNJBookingsQuery{PNJID: user.ID, Filter: filter})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseListFilter(c *gin.Context) (domainbooking.ListFilter, error) {
	var filter domainbooking.ListFilter
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				filter.Statuses = append(filter.Statuses, domainbooking.Status(s))
			}
		}
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, err
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, err
		}
		filter.To = to
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filter, err
		}
		filter.Limit = limit
	}
	return filter, nil
}

var _ MeHTTP = MeHandler{}
