package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/dto"
	BookingApp "pnjpremium/internal/app/handlers/booking"
	"pnjpremium/internal/app/queries"
	domainbooking "pnjpremium/internal/domain/booking"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type locationRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	PlaceID string  `json:"place_id"`
}

type createBookingRequest struct {
	PNJID           string          `json:"pnj_id"`
	Date            time.Time       `json:"date"`
	Start           string          `json:"start"`
	DurationMinutes int             `json:"duration_minutes"`
	Location        locationRequest `json:"location"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.RequestBookingCommand{
		CommandID:       generateCommandID(),
		PlayerID:        user.ID,
		PNJID:           req.PNJID,
		Date:            req.Date,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Location: domainbooking.Location{
			Name:    req.Location.Name,
			Address: req.Location.Address,
			Lat:     req.Location.Lat,
			Lon:     req.Location.Lon,
			PlaceID: req.Location.PlaceID,
		},
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.RequestBookingCommand, *BookingApp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	view, err := queries.Ask[BookingApp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, BookingApp.GetBookingQuery{
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if view.PlayerID != user.ID && view.PNJID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// actorFor resolves which side of the booking the caller is, rejecting
// outsiders with 403 and unknown bookings with the usual sentinel mapping.
// Transition endpoints derive the acting party from the principal, never from
// the request body.
func (h BookingHandler) actorFor(c *gin.Context, user principal) (domainbooking.Actor, bool) {
	view, err := queries.Ask[BookingApp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, BookingApp.GetBookingQuery{
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return "", false
	}
	switch user.ID {
	case view.PNJID:
		return domainbooking.ActorPNJ, true
	case view.PlayerID:
		return domainbooking.ActorPlayer, true
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return "", false
	}
}

func (h BookingHandler) requirePNJ(c *gin.Context) bool {
	user, ok := requirePrincipal(c)
	if !ok {
		return false
	}
	actor, ok := h.actorFor(c, user)
	if !ok {
		return false
	}
	if actor != domainbooking.ActorPNJ {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the PNJ may do this"})
		return false
	}
	return true
}

func (h BookingHandler) Accept(c *gin.Context) {
	if !h.requirePNJ(c) {
		return
	}
	h.transition(c, BookingApp.AcceptBookingCommand{BookingID: c.Param("id")})
}

func (h BookingHandler) Reject(c *gin.Context) {
	if !h.requirePNJ(c) {
		return
	}
	h.transition(c, BookingApp.RejectBookingCommand{BookingID: c.Param("id")})
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, ok := h.actorFor(c, user)
	if !ok {
		return
	}
	h.transition(c, BookingApp.CancelBookingCommand{
		BookingID: c.Param("id"),
		Reason:    domainbooking.CancelReason(req.Reason),
		By:        actor,
	})
}

type checkInRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, ok := h.actorFor(c, user)
	if !ok {
		return
	}
	h.transition(c, BookingApp.CheckInCommand{
		BookingID:   c.Param("id"),
		By:          actor,
		Coordinates: domainbooking.GeoPoint{Lat: req.Lat, Lon: req.Lon},
	})
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	actor, ok := h.actorFor(c, user)
	if !ok {
		return
	}
	h.transition(c, BookingApp.CheckOutCommand{
		BookingID: c.Param("id"),
		By:        actor,
	})
}

func (h BookingHandler) transition(c *gin.Context, cmd commands.Command) {
	result, err := h.Commands.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
