package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

type LotHandler struct {
	supervisor *actor.LotSupervisor
}

func NewLotHandler(supervisor *actor.LotSupervisor) *LotHandler {
	return &LotHandler{supervisor: supervisor}
}

// POST /api/v1/parking-lots
func (h *LotHandler) RegisterLot(c *gin.Context) {
	var req domain.RegisterLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxCapacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "maxCapacity must be positive"})
		return
	}

	registration, err := h.supervisor.Register(c.Request.Context(), req.LotID, req.MaxCapacity, req.Lat, req.Lng)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain.RegisterLotResponse{
		LotID:       registration.LotID,
		MaxCapacity: registration.MaxCapacity,
		Status:      "registered",
	})
}

// DELETE /api/v1/parking-lots/:lot_id
func (h *LotHandler) DeregisterLot(c *gin.Context) {
	lotID := c.Param("lot_id")

	removed, err := h.supervisor.Deregister(c.Request.Context(), lotID)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.DeregisterLotResponse{LotID: removed, Status: "deregistered"})
}

// GET /api/v1/parking-lots/:lot_id
//
// An unknown lot is not an error: the reply carries maxCapacity 0 and
// callers detect absence from that.
func (h *LotHandler) GetLotStatus(c *gin.Context) {
	lotID := c.Param("lot_id")

	status, err := h.supervisor.GetStatus(c.Request.Context(), lotID)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.LotStatusResponse{
		LotID:            status.LotID,
		CurrentOccupancy: status.CurrentOccupancy,
		MaxCapacity:      status.MaxCapacity,
		AvailableSpaces:  status.AvailableSpaces(),
		Lat:              status.Lat,
		Lng:              status.Lng,
	})
}

// GET /api/v1/parking-lots
//
// Replies with the raw lotId -> maxCapacity mapping.
func (h *LotHandler) ListLots(c *gin.Context) {
	registry, err := h.supervisor.GetRegistered(c.Request.Context())
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, registry)
}

// POST /api/v1/occupancy
//
// Fire-and-forget: the report is accepted without waiting for the lot
// actor. A report for an unknown lot is dropped inside the supervisor.
func (h *LotHandler) ReportOccupancy(c *gin.Context) {
	var report domain.OccupancyReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if report.CurrentOccupancy < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentOccupancy must not be negative"})
		return
	}
	if report.Timestamp == 0 {
		report.Timestamp = time.Now().UnixMilli()
	}

	h.supervisor.UpdateOccupancy(report.LotID, report.CurrentOccupancy, report.Timestamp)
	c.JSON(http.StatusAccepted, domain.OccupancyAccepted{
		Status:           "accepted",
		LotID:            report.LotID,
		CurrentOccupancy: report.CurrentOccupancy,
	})
}

// abortWithAskError maps actor ask failures onto HTTP statuses: a
// timed-out reply is the gateway's problem to surface, everything else
// is internal.
func abortWithAskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, actor.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "system shutting down"})
	case isTimeout(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timed out waiting for reply"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
