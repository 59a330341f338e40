package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

type NearbyHandler struct {
	routing *actor.RoutingActor
}

func NewNearbyHandler(routing *actor.RoutingActor) *NearbyHandler {
	return &NearbyHandler{routing: routing}
}

// GET /api/v1/nearby?lat=..&lng=..&limit=..&only_available=..
func (h *NearbyHandler) GetNearbyLots(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lng"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	onlyAvailable := c.DefaultQuery("only_available", "false") == "true"

	lots, err := h.routing.GetNearbyLots(c.Request.Context(), lat, lng, limit, onlyAvailable)
	if err != nil {
		abortWithAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.NearbyLotsResponse{Lots: lots})
}
