package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

type BookingHandler struct {
	bookings *actor.BookingActor
}

func NewBookingHandler(bookings *actor.BookingActor) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// POST /api/v1/bookings
func (h *BookingHandler) Book(c *gin.Context) {
	var req domain.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmation, err := h.bookings.Book(c.Request.Context(), req.LotID, req.LicensePlate)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, confirmation)
}

// POST /api/v1/bookings/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req domain.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmation, err := h.bookings.Cancel(c.Request.Context(), req.LotID, req.LicensePlate)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, confirmation)
}
