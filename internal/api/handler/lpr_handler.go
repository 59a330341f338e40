package handler

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/service"
)

type LPRHandler struct {
	lprService *service.LPRService
	payments   *actor.PaymentActor
}

func NewLPRHandler(lprService *service.LPRService, payments *actor.PaymentActor) *LPRHandler {
	return &LPRHandler{lprService: lprService, payments: payments}
}

// POST /api/v1/lpr/entry
//
// Accepts a camera frame (multipart field "image"), extracts the
// plate and opens a payment session for it.
func (h *LPRHandler) ProcessEntryImage(c *gin.Context) {
	requestID := uuid.NewString()

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file", "requestId": requestID})
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil || len(imageBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image", "requestId": requestID})
		return
	}

	plate, confidence, err := h.lprService.ProcessImageForLPR(c.Request.Context(), imageBytes)
	if err != nil {
		log.Printf("LPRHandler: recognition failed (request %s): %v", requestID, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "requestId": requestID})
		return
	}

	entryTimestamp := time.Now().UnixMilli()
	h.payments.CarEntered(plate, entryTimestamp)

	c.JSON(http.StatusAccepted, gin.H{
		"licensePlate":   plate,
		"confidence":     confidence,
		"entryTimestamp": entryTimestamp,
		"requestId":      requestID,
		"status":         "entered",
	})
}
