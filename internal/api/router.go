package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/api/handler"
	"github.com/dominikschweigl/ticketless-park-system/internal/service"
)

func SetupRouter(
	supervisor *actor.LotSupervisor,
	payments *actor.PaymentActor,
	bookings *actor.BookingActor,
	routing *actor.RoutingActor,
	lprService *service.LPRService,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// WebSocket occupancy feed for dashboards
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		lotH := handler.NewLotHandler(supervisor)
		lotRoutes := v1.Group("/parking-lots")
		{
			lotRoutes.POST("", lotH.RegisterLot)
			lotRoutes.GET("", lotH.ListLots)
			lotRoutes.GET("/:lot_id", lotH.GetLotStatus)
			lotRoutes.DELETE("/:lot_id", lotH.DeregisterLot)
		}
		v1.POST("/occupancy", lotH.ReportOccupancy)

		nearbyH := handler.NewNearbyHandler(routing)
		v1.GET("/nearby", nearbyH.GetNearbyLots)

		paymentH := handler.NewPaymentHandler(payments)
		paymentRoutes := v1.Group("/payments")
		{
			paymentRoutes.POST("/entry", paymentH.CarEntered)
			paymentRoutes.POST("/pay", paymentH.Pay)
			paymentRoutes.GET("/:plate", paymentH.CheckOnLeave)
			paymentRoutes.DELETE("/:plate", paymentH.DeleteOnExit)
		}

		bookingH := handler.NewBookingHandler(bookings)
		bookingRoutes := v1.Group("/bookings")
		{
			bookingRoutes.POST("", bookingH.Book)
			bookingRoutes.POST("/cancel", bookingH.Cancel)
		}

		if lprService != nil {
			lprH := handler.NewLPRHandler(lprService, payments)
			v1.POST("/lpr/entry", lprH.ProcessEntryImage)
		}
	}
	return r
}
