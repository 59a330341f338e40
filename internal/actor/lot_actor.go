package actor

import (
	"log"
	"time"

	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

type lotMessage interface{}

type updateOccupancyMsg struct {
	occupancy int
	timestamp int64
}

type getStatusMsg struct {
	replyTo chan<- domain.LotStatus
}

// LotActor mirrors the state of a single parking lot. The edge sensors
// are the source of truth: every accepted update overwrites occupancy
// wholesale, so a stale report can regress the visible state until the
// next report self-heals it.
type LotActor struct {
	lotID       string
	maxCapacity int
	lat         float64
	lng         float64

	// mutated only inside run
	currentOccupancy    int
	lastUpdateTimestamp int64

	mailbox *mailbox[lotMessage]
}

func newLotActor(lotID string, maxCapacity int, lat, lng float64) *LotActor {
	a := &LotActor{
		lotID:               lotID,
		maxCapacity:         maxCapacity,
		lat:                 lat,
		lng:                 lng,
		lastUpdateTimestamp: time.Now().UnixMilli(),
		mailbox:             newMailbox[lotMessage](),
	}
	go a.run()
	log.Printf("LotActor: started for lot %s (capacity %d)", lotID, maxCapacity)
	return a
}

func (a *LotActor) run() {
	for {
		msg, ok := a.mailbox.pop()
		if !ok {
			log.Printf("LotActor: stopped for lot %s", a.lotID)
			return
		}
		switch m := msg.(type) {
		case updateOccupancyMsg:
			a.handleUpdate(m)
		case getStatusMsg:
			m.replyTo <- a.status()
		default:
			log.Printf("LotActor: lot %s dropping unrecognized message %T", a.lotID, msg)
		}
	}
}

func (a *LotActor) handleUpdate(m updateOccupancyMsg) {
	a.currentOccupancy = m.occupancy
	a.lastUpdateTimestamp = m.timestamp

	// Not clamped: the edge sensor is trusted even when it reports
	// more cars than the lot holds.
	if a.currentOccupancy > a.maxCapacity {
		log.Printf("LotActor: occupancy %d exceeds capacity %d for lot %s, possible sensor error",
			a.currentOccupancy, a.maxCapacity, a.lotID)
	}
	log.Printf("LotActor: occupancy update for lot %s: %d/%d cars", a.lotID, a.currentOccupancy, a.maxCapacity)
}

func (a *LotActor) status() domain.LotStatus {
	return domain.LotStatus{
		LotID:            a.lotID,
		CurrentOccupancy: a.currentOccupancy,
		MaxCapacity:      a.maxCapacity,
		IsFull:           a.currentOccupancy >= a.maxCapacity,
		Lat:              a.lat,
		Lng:              a.lng,
	}
}

func (a *LotActor) stop() {
	a.mailbox.close()
}
