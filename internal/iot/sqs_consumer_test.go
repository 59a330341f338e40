package iot

import (
	"context"
	"testing"
	"time"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
)

func newTestConsumer(t *testing.T) (*SQSConsumer, *actor.LotSupervisor) {
	t.Helper()
	supervisor := actor.NewLotSupervisor(5*time.Second, nil)
	t.Cleanup(supervisor.Stop)
	return &SQSConsumer{supervisor: supervisor}, supervisor
}

func TestHandleRegisterMessage(t *testing.T) {
	c, supervisor := newTestConsumer(t)
	ctx := context.Background()

	body := `{"messageType":"register","edgeServerId":"edge-1","lotId":"lot-01","maxCapacity":50,"lat":47.2,"lng":11.3}`
	if err := c.handleMessage(ctx, body); err != nil {
		t.Fatalf("handle register: %v", err)
	}

	registry, err := supervisor.GetRegistered(ctx)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if registry["lot-01"] != 50 {
		t.Fatalf("registry = %v, want lot-01 with capacity 50", registry)
	}
}

func TestHandleOccupancyMessage(t *testing.T) {
	c, supervisor := newTestConsumer(t)
	ctx := context.Background()

	register := `{"messageType":"register","lotId":"lot-01","maxCapacity":50}`
	if err := c.handleMessage(ctx, register); err != nil {
		t.Fatalf("register: %v", err)
	}

	occupancy := `{"messageType":"occupancy","lotId":"lot-01","currentOccupancy":23,"timestamp":123456}`
	if err := c.handleMessage(ctx, occupancy); err != nil {
		t.Fatalf("occupancy: %v", err)
	}

	status, err := supervisor.GetStatus(ctx, "lot-01")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentOccupancy != 23 {
		t.Fatalf("occupancy = %d, want 23", status.CurrentOccupancy)
	}
}

func TestMalformedMessagesAreFlaggedForDeletion(t *testing.T) {
	c, _ := newTestConsumer(t)
	ctx := context.Background()

	cases := []struct {
		name string
		body string
	}{
		{"not json", "{{{"},
		{"unknown type", `{"messageType":"telemetry"}`},
		{"occupancy without lot", `{"messageType":"occupancy","currentOccupancy":3}`},
		{"register with zero capacity", `{"messageType":"register","lotId":"x","maxCapacity":0}`},
	}
	for _, tc := range cases {
		err := c.handleMessage(ctx, tc.body)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !isMalformed(err) {
			t.Errorf("%s: error %v not flagged malformed, message would wedge the queue", tc.name, err)
		}
	}
}
