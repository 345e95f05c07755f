package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/timeofday"
)

// respondError maps domain sentinels onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainprovider.ErrNotFound),
		errors.Is(err, domainchat.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, domainchat.ErrAlreadyExists),
		errors.Is(err, uow.ErrConcurrentUpdate):
		status = http.StatusConflict
	case errors.Is(err, domainbooking.ErrSlotUnavailable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, uow.ErrBackendUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domainbooking.ErrInvalidDuration),
		errors.Is(err, domainbooking.ErrInvalidSchedule),
		errors.Is(err, domainbooking.ErrInvalidActor),
		errors.Is(err, domainbooking.ErrInvalidReason),
		errors.Is(err, domainbooking.ErrPlayerRequired),
		errors.Is(err, timeofday.ErrInvalidTime):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
