package iot

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
)

// MQTTPublisher emits events to edge nodes through the AWS IoT data
// plane. Edge nodes subscribe to their lot's topic.
type MQTTPublisher struct {
	iotDataClient *iotdataplane.Client
}

func NewMQTTPublisher(client *iotdataplane.Client) *MQTTPublisher {
	return &MQTTPublisher{iotDataClient: client}
}

func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	_, err := p.iotDataClient.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: payload,
	})
	return err
}

// LogPublisher stands in when no IoT endpoint is configured (local
// runs); events are logged instead of delivered.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	log.Printf("LogPublisher: %s <- %s", topic, payload)
	return nil
}
