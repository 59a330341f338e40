package iot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/config"
	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

// SQSConsumer long-polls the edge queue for sensor reports. Occupancy
// updates are forwarded fire-and-forget; registration messages sent by
// edges on startup are forwarded with the reply discarded, which makes
// them fire-and-forget from the edge's point of view too.
type SQSConsumer struct {
	sqsClient  *sqs.Client
	queueURL   string
	supervisor *actor.LotSupervisor
}

func NewSQSConsumer(client *sqs.Client, cfg *config.Config, supervisor *actor.LotSupervisor) *SQSConsumer {
	return &SQSConsumer{
		sqsClient:  client,
		queueURL:   cfg.SQSOccupancyQueueURL,
		supervisor: supervisor,
	}
}

func (c *SQSConsumer) Start(ctx context.Context) {
	log.Printf("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return
		default:
			receiveInput := &sqs.ReceiveMessageInput{
				QueueUrl:            &c.queueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   60,
			}

			result, err := c.sqsClient.ReceiveMessage(ctx, receiveInput)
			if err != nil {
				log.Printf("SQS Consumer: receive failed: %v", err)
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					log.Println("SQS Consumer: context cancelled while waiting for retry.")
					return
				}
				continue
			}

			for _, message := range result.Messages {
				if message.Body == nil {
					log.Println("SQS Consumer: message with empty body, deleting.")
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}

				switch err := c.handleMessage(ctx, *message.Body); {
				case err == nil:
					c.deleteMessage(ctx, message.ReceiptHandle)
				case isMalformed(err):
					// Poison messages must not wedge the queue.
					log.Printf("SQS Consumer: malformed message, deleting: %v", err)
					c.deleteMessage(ctx, message.ReceiptHandle)
				default:
					log.Printf("SQS Consumer: processing failed, will redeliver after visibility timeout: %v", err)
				}
			}
		}
	}
}

type malformedError struct{ err error }

func (e malformedError) Error() string { return e.err.Error() }
func (e malformedError) Unwrap() error { return e.err }

func isMalformed(err error) bool {
	_, ok := err.(malformedError)
	return ok
}

func (c *SQSConsumer) handleMessage(ctx context.Context, body string) error {
	var envelope domain.GenericEdgeEvent
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return malformedError{fmt.Errorf("unmarshal edge event envelope: %w", err)}
	}
	envelope.RawPayload = json.RawMessage(body)

	switch envelope.MessageType {
	case domain.EdgeMessageOccupancy:
		var event domain.EdgeOccupancyEvent
		if err := json.Unmarshal(envelope.RawPayload, &event); err != nil {
			return malformedError{fmt.Errorf("unmarshal occupancy event: %w", err)}
		}
		if event.LotID == "" {
			return malformedError{fmt.Errorf("occupancy event without lotId")}
		}
		if event.Timestamp == 0 {
			event.Timestamp = time.Now().UnixMilli()
		}
		c.supervisor.UpdateOccupancy(event.LotID, event.CurrentOccupancy, event.Timestamp)
		return nil

	case domain.EdgeMessageRegister:
		var event domain.EdgeRegisterEvent
		if err := json.Unmarshal(envelope.RawPayload, &event); err != nil {
			return malformedError{fmt.Errorf("unmarshal register event: %w", err)}
		}
		if event.LotID == "" || event.MaxCapacity <= 0 {
			return malformedError{fmt.Errorf("register event with invalid lotId or capacity")}
		}
		if _, err := c.supervisor.Register(ctx, event.LotID, event.MaxCapacity, event.Lat, event.Lng); err != nil {
			return fmt.Errorf("register lot %s: %w", event.LotID, err)
		}
		return nil

	default:
		return malformedError{fmt.Errorf("unrecognized message type %q", envelope.MessageType)}
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		log.Println("SQS Consumer: nil receipt handle, cannot delete message.")
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: delete failed: %v", err)
	}
}
