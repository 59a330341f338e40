package actor

import (
	"context"
	"log"
	"time"

	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

// OccupancyNotifier receives a notification after every occupancy
// update that was routed to a known lot. Implementations must not
// block; the supervisor calls this from its message loop.
type OccupancyNotifier interface {
	NotifyOccupancy(n domain.OccupancyNotification)
}

type supervisorMessage interface{}

type registerLotMsg struct {
	lotID       string
	maxCapacity int
	lat         float64
	lng         float64
	replyTo     chan<- domain.LotRegistration
}

type deregisterLotMsg struct {
	lotID   string
	replyTo chan<- string
}

type routeOccupancyMsg struct {
	lotID     string
	occupancy int
	timestamp int64
}

type routeStatusMsg struct {
	lotID   string
	replyTo chan<- domain.LotStatus
}

type registrySnapshotMsg struct {
	replyTo chan<- map[string]int
}

type lotEntry struct {
	actor       *LotActor
	maxCapacity int
}

// LotSupervisor owns the lot registry. It creates lot actors on first
// registration, routes lot-scoped messages to them, and answers
// registry queries. The registry map is touched only inside run, never
// handed across a component boundary (snapshots are copies).
type LotSupervisor struct {
	askTimeout time.Duration
	notifier   OccupancyNotifier
	mailbox    *mailbox[supervisorMessage]
	lots       map[string]*lotEntry
}

// NewLotSupervisor starts the supervisor loop. notifier may be nil.
func NewLotSupervisor(askTimeout time.Duration, notifier OccupancyNotifier) *LotSupervisor {
	s := &LotSupervisor{
		askTimeout: askTimeout,
		notifier:   notifier,
		mailbox:    newMailbox[supervisorMessage](),
		lots:       make(map[string]*lotEntry),
	}
	go s.run()
	log.Println("LotSupervisor: started")
	return s
}

// Register creates a lot actor for an unknown id seeded with zero
// occupancy. Re-registering a known id is a no-op that returns the
// original capacity, even when the submitted capacity differs.
func (s *LotSupervisor) Register(ctx context.Context, lotID string, maxCapacity int, lat, lng float64) (domain.LotRegistration, error) {
	reply := make(chan domain.LotRegistration, 1)
	if !s.mailbox.push(registerLotMsg{lotID: lotID, maxCapacity: maxCapacity, lat: lat, lng: lng, replyTo: reply}) {
		return domain.LotRegistration{}, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, s.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

// Deregister removes and stops the lot actor. Deleting an unknown id
// still succeeds; callers cannot tell "already gone" from "just
// removed".
func (s *LotSupervisor) Deregister(ctx context.Context, lotID string) (string, error) {
	reply := make(chan string, 1)
	if !s.mailbox.push(deregisterLotMsg{lotID: lotID, replyTo: reply}) {
		return "", ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, s.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

// UpdateOccupancy is fire-and-forget: it never blocks and the sender
// gets no confirmation. Updates for unknown lots are dropped with a
// warning inside the loop.
func (s *LotSupervisor) UpdateOccupancy(lotID string, occupancy int, timestamp int64) {
	if !s.mailbox.push(routeOccupancyMsg{lotID: lotID, occupancy: occupancy, timestamp: timestamp}) {
		log.Printf("LotSupervisor: dropping occupancy update for lot %s, supervisor stopped", lotID)
	}
}

// GetStatus asks the lot actor for its current status. Unknown lots
// get a zero-valued sentinel (capacity 0) instead of an error.
func (s *LotSupervisor) GetStatus(ctx context.Context, lotID string) (domain.LotStatus, error) {
	reply := make(chan domain.LotStatus, 1)
	if !s.mailbox.push(routeStatusMsg{lotID: lotID, replyTo: reply}) {
		return domain.LotStatus{}, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, s.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

// GetRegistered returns a snapshot of the registry (lot id to max
// capacity) taken at the moment the message is processed.
func (s *LotSupervisor) GetRegistered(ctx context.Context) (map[string]int, error) {
	reply := make(chan map[string]int, 1)
	if !s.mailbox.push(registrySnapshotMsg{replyTo: reply}) {
		return nil, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, s.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

// Stop closes the mailbox; queued messages are still processed, then
// every lot actor is stopped.
func (s *LotSupervisor) Stop() {
	s.mailbox.close()
}

func (s *LotSupervisor) run() {
	for {
		msg, ok := s.mailbox.pop()
		if !ok {
			for id, entry := range s.lots {
				entry.actor.stop()
				delete(s.lots, id)
			}
			log.Println("LotSupervisor: stopped")
			return
		}
		switch m := msg.(type) {
		case registerLotMsg:
			s.handleRegister(m)
		case deregisterLotMsg:
			s.handleDeregister(m)
		case routeOccupancyMsg:
			s.handleOccupancy(m)
		case routeStatusMsg:
			s.handleStatus(m)
		case registrySnapshotMsg:
			snapshot := make(map[string]int, len(s.lots))
			for id, entry := range s.lots {
				snapshot[id] = entry.maxCapacity
			}
			m.replyTo <- snapshot
		default:
			log.Printf("LotSupervisor: dropping unrecognized message %T", msg)
		}
	}
}

func (s *LotSupervisor) handleRegister(m registerLotMsg) {
	if entry, ok := s.lots[m.lotID]; ok {
		if entry.maxCapacity != m.maxCapacity {
			log.Printf("LotSupervisor: lot %s re-registered with capacity %d, keeping original %d",
				m.lotID, m.maxCapacity, entry.maxCapacity)
		} else {
			log.Printf("LotSupervisor: lot %s already registered", m.lotID)
		}
		m.replyTo <- domain.LotRegistration{LotID: m.lotID, MaxCapacity: entry.maxCapacity}
		return
	}

	actor := newLotActor(m.lotID, m.maxCapacity, m.lat, m.lng)
	s.lots[m.lotID] = &lotEntry{actor: actor, maxCapacity: m.maxCapacity}
	log.Printf("LotSupervisor: registered lot %s (capacity %d)", m.lotID, m.maxCapacity)
	m.replyTo <- domain.LotRegistration{LotID: m.lotID, MaxCapacity: m.maxCapacity}
}

func (s *LotSupervisor) handleDeregister(m deregisterLotMsg) {
	if entry, ok := s.lots[m.lotID]; ok {
		entry.actor.stop()
		delete(s.lots, m.lotID)
		log.Printf("LotSupervisor: deregistered lot %s", m.lotID)
	} else {
		log.Printf("LotSupervisor: deregister for unknown lot %s, replying anyway", m.lotID)
	}
	m.replyTo <- m.lotID
}

func (s *LotSupervisor) handleOccupancy(m routeOccupancyMsg) {
	entry, ok := s.lots[m.lotID]
	if !ok {
		log.Printf("LotSupervisor: lot %s not found for occupancy update, dropping", m.lotID)
		return
	}
	entry.actor.mailbox.push(updateOccupancyMsg{occupancy: m.occupancy, timestamp: m.timestamp})

	if s.notifier != nil {
		s.notifier.NotifyOccupancy(domain.OccupancyNotification{
			LotID:            m.lotID,
			CurrentOccupancy: m.occupancy,
			MaxCapacity:      entry.maxCapacity,
			AvailableSpaces:  entry.maxCapacity - m.occupancy,
			Timestamp:        m.timestamp,
		})
	}
}

// handleStatus forwards the query into the lot actor's mailbox with
// the caller's reply channel, so the supervisor never waits on a
// child.
func (s *LotSupervisor) handleStatus(m routeStatusMsg) {
	entry, ok := s.lots[m.lotID]
	if !ok {
		log.Printf("LotSupervisor: lot %s not found for status query", m.lotID)
		m.replyTo <- domain.LotStatus{LotID: m.lotID}
		return
	}
	entry.actor.mailbox.push(getStatusMsg{replyTo: m.replyTo})
}
