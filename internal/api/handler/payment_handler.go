package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

type PaymentHandler struct {
	payments *actor.PaymentActor
}

func NewPaymentHandler(payments *actor.PaymentActor) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// POST /api/v1/payments/entry
func (h *PaymentHandler) CarEntered(c *gin.Context) {
	var req domain.CarEnteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EntryTimestamp == 0 {
		req.EntryTimestamp = time.Now().UnixMilli()
	}

	h.payments.CarEntered(req.LicensePlate, req.EntryTimestamp)
	c.JSON(http.StatusAccepted, gin.H{
		"licensePlate":   req.LicensePlate,
		"entryTimestamp": req.EntryTimestamp,
		"status":         "entered",
	})
}

// POST /api/v1/payments/pay
//
// An unknown plate is a well-formed "no open session" reply, not a
// failure.
func (h *PaymentHandler) Pay(c *gin.Context) {
	var req domain.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.payments.Pay(c.Request.Context(), req.LicensePlate)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GET /api/v1/payments/:plate
func (h *PaymentHandler) CheckOnLeave(c *gin.Context) {
	plate := c.Param("plate")

	status, err := h.payments.CheckOnLeave(c.Request.Context(), plate)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// DELETE /api/v1/payments/:plate
func (h *PaymentHandler) DeleteOnExit(c *gin.Context) {
	plate := c.Param("plate")

	if err := h.payments.DeleteOnExit(c.Request.Context(), plate); err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.ExitAck{LicensePlate: plate, Status: "deleted"})
}
