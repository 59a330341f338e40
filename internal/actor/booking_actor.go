package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

// EventPublisher pushes a payload onto a named topic for edge
// consumption. Delivery is best effort; the booking actor neither
// waits for nor verifies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type bookingMessage interface{}

type bookMsg struct {
	lotID        string
	licensePlate string
	replyTo      chan<- domain.BookingConfirmation
}

type cancelBookingMsg struct {
	lotID        string
	licensePlate string
	replyTo      chan<- domain.BookingConfirmation
}

// BookingActor is a validated relay, not a reservation ledger: it owns
// no durable state, performs no capacity check, and republishes every
// request as an event on the per-lot booking topic.
type BookingActor struct {
	publisher  EventPublisher
	askTimeout time.Duration
	mailbox    *mailbox[bookingMessage]
}

func NewBookingActor(publisher EventPublisher, askTimeout time.Duration) *BookingActor {
	a := &BookingActor{
		publisher:  publisher,
		askTimeout: askTimeout,
		mailbox:    newMailbox[bookingMessage](),
	}
	go a.run()
	log.Println("BookingActor: started")
	return a
}

// Book always succeeds from the caller's perspective; the booking
// effect is the asynchronous event on the lot's topic.
func (a *BookingActor) Book(ctx context.Context, lotID, licensePlate string) (domain.BookingConfirmation, error) {
	reply := make(chan domain.BookingConfirmation, 1)
	if !a.mailbox.push(bookMsg{lotID: lotID, licensePlate: licensePlate, replyTo: reply}) {
		return domain.BookingConfirmation{}, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

// Cancel mirrors Book with the cancel action.
func (a *BookingActor) Cancel(ctx context.Context, lotID, licensePlate string) (domain.BookingConfirmation, error) {
	reply := make(chan domain.BookingConfirmation, 1)
	if !a.mailbox.push(cancelBookingMsg{lotID: lotID, licensePlate: licensePlate, replyTo: reply}) {
		return domain.BookingConfirmation{}, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

func (a *BookingActor) Stop() {
	a.mailbox.close()
}

// BookingTopic is the per-lot publish topic edge nodes subscribe to.
func BookingTopic(lotID string) string {
	return fmt.Sprintf("parking/booking/%s", lotID)
}

func (a *BookingActor) run() {
	for {
		msg, ok := a.mailbox.pop()
		if !ok {
			log.Println("BookingActor: stopped")
			return
		}
		switch m := msg.(type) {
		case bookMsg:
			a.relay(m.lotID, m.licensePlate, domain.BookingActionBook)
			m.replyTo <- domain.BookingConfirmation{LotID: m.lotID, LicensePlate: m.licensePlate, Status: "queued"}
		case cancelBookingMsg:
			a.relay(m.lotID, m.licensePlate, domain.BookingActionCancel)
			m.replyTo <- domain.BookingConfirmation{LotID: m.lotID, LicensePlate: m.licensePlate, Status: "canceled"}
		default:
			log.Printf("BookingActor: dropping unrecognized message %T", msg)
		}
	}
}

func (a *BookingActor) relay(lotID, licensePlate, action string) {
	event := domain.BookingEvent{
		Action:       action,
		LicensePlate: licensePlate,
		EventID:      uuid.NewString(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("BookingActor: marshal %s event for lot %s: %v", action, lotID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.askTimeout)
	defer cancel()
	if err := a.publisher.Publish(ctx, BookingTopic(lotID), payload); err != nil {
		// Message loss is tolerated; the confirmation to the caller
		// stands regardless.
		log.Printf("BookingActor: publish %s event for lot %s failed: %v", action, lotID, err)
		return
	}
	log.Printf("BookingActor: %s event for plate %s queued on %s", action, licensePlate, BookingTopic(lotID))
}
