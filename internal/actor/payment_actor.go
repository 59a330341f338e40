package actor

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

const halfHourMillis = 30 * 60 * 1000

type paymentMessage interface{}

type carEnteredMsg struct {
	licensePlate   string
	entryTimestamp int64
}

type payMsg struct {
	licensePlate string
	replyTo      chan<- domain.PaymentStatus
}

type checkOnLeaveMsg struct {
	licensePlate string
	replyTo      chan<- domain.PaymentStatus
}

type deleteOnExitMsg struct {
	licensePlate string
	replyTo      chan<- struct{}
}

type paymentSession struct {
	entryTimestamp int64
	paid           bool
}

// PaymentActor tracks one open session per license plate: entry time,
// fee computation and payment flag. Sessions live in memory only and
// vanish on exit.
type PaymentActor struct {
	ratePerHourCents int
	askTimeout       time.Duration
	now              func() int64

	mailbox  *mailbox[paymentMessage]
	sessions map[string]*paymentSession
}

func NewPaymentActor(ratePerHourCents int, askTimeout time.Duration) *PaymentActor {
	return newPaymentActor(ratePerHourCents, askTimeout, func() int64 { return time.Now().UnixMilli() })
}

func newPaymentActor(ratePerHourCents int, askTimeout time.Duration, now func() int64) *PaymentActor {
	a := &PaymentActor{
		ratePerHourCents: ratePerHourCents,
		askTimeout:       askTimeout,
		now:              now,
		mailbox:          newMailbox[paymentMessage](),
		sessions:         make(map[string]*paymentSession),
	}
	go a.run()
	log.Printf("PaymentActor: started (rate %d cents/hour)", ratePerHourCents)
	return a
}

// CarEntered opens a session for the plate, fire-and-forget. Re-entry
// before exit overwrites the previous session without complaint.
func (a *PaymentActor) CarEntered(licensePlate string, entryTimestamp int64) {
	if !a.mailbox.push(carEnteredMsg{licensePlate: licensePlate, entryTimestamp: entryTimestamp}) {
		log.Printf("PaymentActor: dropping entry for %s, actor stopped", licensePlate)
	}
}

// Pay computes the fee for the plate's open session and marks it paid.
// Paying again recomputes from the current time; the fee is not frozen
// at first payment. No open session yields a zero-valued status.
func (a *PaymentActor) Pay(ctx context.Context, licensePlate string) (domain.PaymentStatus, error) {
	reply := make(chan domain.PaymentStatus, 1)
	if !a.mailbox.push(payMsg{licensePlate: licensePlate, replyTo: reply}) {
		return domain.PaymentStatus{}, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

// CheckOnLeave is the read-only variant of Pay: same fee computation,
// paid flag untouched.
func (a *PaymentActor) CheckOnLeave(ctx context.Context, licensePlate string) (domain.PaymentStatus, error) {
	reply := make(chan domain.PaymentStatus, 1)
	if !a.mailbox.push(checkOnLeaveMsg{licensePlate: licensePlate, replyTo: reply}) {
		return domain.PaymentStatus{}, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

// DeleteOnExit drops the plate's session and acknowledges whether or
// not one existed.
func (a *PaymentActor) DeleteOnExit(ctx context.Context, licensePlate string) error {
	reply := make(chan struct{}, 1)
	if !a.mailbox.push(deleteOnExitMsg{licensePlate: licensePlate, replyTo: reply}) {
		return ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	_, err := await(ctx, reply)
	return err
}

func (a *PaymentActor) Stop() {
	a.mailbox.close()
}

func (a *PaymentActor) run() {
	for {
		msg, ok := a.mailbox.pop()
		if !ok {
			log.Println("PaymentActor: stopped")
			return
		}
		switch m := msg.(type) {
		case carEnteredMsg:
			a.handleCarEntered(m)
		case payMsg:
			a.handlePay(m)
		case checkOnLeaveMsg:
			a.handleCheckOnLeave(m)
		case deleteOnExitMsg:
			delete(a.sessions, m.licensePlate)
			log.Printf("PaymentActor: session removed on exit for %s", m.licensePlate)
			m.replyTo <- struct{}{}
		default:
			log.Printf("PaymentActor: dropping unrecognized message %T", msg)
		}
	}
}

func (a *PaymentActor) handleCarEntered(m carEnteredMsg) {
	if _, ok := a.sessions[m.licensePlate]; ok {
		log.Printf("PaymentActor: %s re-entered before exit, discarding previous session", m.licensePlate)
	}
	a.sessions[m.licensePlate] = &paymentSession{entryTimestamp: m.entryTimestamp}
	log.Printf("PaymentActor: car %s entered at %d", m.licensePlate, m.entryTimestamp)
}

func (a *PaymentActor) handlePay(m payMsg) {
	now := a.now()
	session, ok := a.sessions[m.licensePlate]
	if !ok {
		log.Printf("PaymentActor: pay for unknown plate %s", m.licensePlate)
		m.replyTo <- domain.PaymentStatus{LicensePlate: m.licensePlate, CurrentTimestamp: now}
		return
	}
	price := a.priceCents(session.entryTimestamp, now)
	if session.paid {
		log.Printf("PaymentActor: %s paying again, recomputed %d cents", m.licensePlate, price)
	}
	session.paid = true
	log.Printf("PaymentActor: car %s marked paid: %d cents", m.licensePlate, price)
	m.replyTo <- domain.PaymentStatus{
		LicensePlate:     m.licensePlate,
		Paid:             true,
		EntryTimestamp:   session.entryTimestamp,
		CurrentTimestamp: now,
		PriceCents:       price,
	}
}

func (a *PaymentActor) handleCheckOnLeave(m checkOnLeaveMsg) {
	now := a.now()
	session, ok := a.sessions[m.licensePlate]
	if !ok {
		m.replyTo <- domain.PaymentStatus{LicensePlate: m.licensePlate, CurrentTimestamp: now}
		return
	}
	m.replyTo <- domain.PaymentStatus{
		LicensePlate:     m.licensePlate,
		Paid:             session.paid,
		EntryTimestamp:   session.entryTimestamp,
		CurrentTimestamp: now,
		PriceCents:       a.priceCents(session.entryTimestamp, now),
	}
}

// priceCents bills in half-hour increments, rounded up. Zero elapsed
// time bills nothing.
func (a *PaymentActor) priceCents(entryTimestamp, now int64) int {
	elapsed := now - entryTimestamp
	if elapsed < 0 {
		elapsed = 0
	}
	billableHalfHours := (elapsed + halfHourMillis - 1) / halfHourMillis
	return int(math.Round(float64(billableHalfHours) * 0.5 * float64(a.ratePerHourCents)))
}
