package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/api"
	"github.com/dominikschweigl/ticketless-park-system/internal/api/handler"
	"github.com/dominikschweigl/ticketless-park-system/internal/config"
	"github.com/dominikschweigl/ticketless-park-system/internal/iot"
	"github.com/dominikschweigl/ticketless-park-system/internal/service"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AWS clients are optional: without them the system still serves
	// HTTP traffic, booking events go to the log publisher and edge
	// reports arrive over HTTP only.
	var sqsClient *sqs.Client
	var iotDataClient *iotdataplane.Client
	var rekognitionClient *rekognition.Client
	if cfg.SQSOccupancyQueueURL != "" || cfg.IoTMQTTEndpoint != "" || cfg.LPREnabled {
		awsCfg, err := awsgo_config.LoadDefaultConfig(ctx, awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Could not load AWS configuration: %v", err)
		}
		if cfg.SQSOccupancyQueueURL != "" {
			sqsClient = sqs.NewFromConfig(awsCfg)
		}
		if cfg.IoTMQTTEndpoint != "" {
			iotDataClient = iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
				o.BaseEndpoint = &cfg.IoTMQTTEndpoint
			})
		}
		if cfg.LPREnabled {
			rekognitionClient = rekognition.NewFromConfig(awsCfg)
		}
	}

	// WebSocket broadcast manager for the live occupancy feed
	wsManager := handler.NewWebSocketManager()
	go wsManager.Start()

	// Actor core
	supervisor := actor.NewLotSupervisor(cfg.AskTimeout, wsManager)
	payments := actor.NewPaymentActor(cfg.PricePerHourCents, cfg.AskTimeout)

	var publisher actor.EventPublisher = iot.LogPublisher{}
	if iotDataClient != nil {
		publisher = iot.NewMQTTPublisher(iotDataClient)
	}
	bookings := actor.NewBookingActor(publisher, cfg.AskTimeout)
	routing := actor.NewRoutingActor(supervisor, cfg.AskTimeout)

	var lprService *service.LPRService
	if rekognitionClient != nil {
		lprService = service.NewLPRService(rekognitionClient)
	}

	var wg sync.WaitGroup
	if sqsClient != nil {
		consumer := iot.NewSQSConsumer(sqsClient, cfg, supervisor)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(ctx)
		}()
	}

	router := api.SetupRouter(supervisor, payments, bookings, routing, lprService, wsManager)
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}

	routing.Stop()
	bookings.Stop()
	payments.Stop()
	supervisor.Stop()
	wg.Wait()
	log.Println("Shutdown complete.")
}
