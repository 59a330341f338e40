package actor

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

const earthRadiusMeters = 6371000.0

type routingMessage interface{}

type nearbyLotsMsg struct {
	userLat       float64
	userLng       float64
	limit         int
	onlyAvailable bool
	replyTo       chan<- []domain.NearbyLot
}

// RoutingActor answers nearby-lot searches: it snapshots the registry,
// fans out one concurrent status ask per lot, ranks the results by
// great-circle distance and truncates to the requested limit. Any
// single failed or timed-out ask fails the whole aggregate over to an
// empty list; partial results are never returned.
type RoutingActor struct {
	supervisor *LotSupervisor
	askTimeout time.Duration
	mailbox    *mailbox[routingMessage]
}

func NewRoutingActor(supervisor *LotSupervisor, askTimeout time.Duration) *RoutingActor {
	a := &RoutingActor{
		supervisor: supervisor,
		askTimeout: askTimeout,
		mailbox:    newMailbox[routingMessage](),
	}
	go a.run()
	log.Println("RoutingActor: started")
	return a
}

// GetNearbyLots returns up to limit lots ordered by ascending distance
// from the user point. With onlyAvailable set, lots without free
// spaces are dropped before ranking.
func (a *RoutingActor) GetNearbyLots(ctx context.Context, userLat, userLng float64, limit int, onlyAvailable bool) ([]domain.NearbyLot, error) {
	reply := make(chan []domain.NearbyLot, 1)
	if !a.mailbox.push(nearbyLotsMsg{userLat: userLat, userLng: userLng, limit: limit, onlyAvailable: onlyAvailable, replyTo: reply}) {
		return nil, ErrStopped
	}
	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	return await(ctx, reply)
}

func (a *RoutingActor) Stop() {
	a.mailbox.close()
}

func (a *RoutingActor) run() {
	for {
		msg, ok := a.mailbox.pop()
		if !ok {
			log.Println("RoutingActor: stopped")
			return
		}
		switch m := msg.(type) {
		case nearbyLotsMsg:
			// The aggregation touches no actor state, so it runs off
			// the loop and replies directly; a slow lot never stalls
			// the next search.
			go a.aggregate(m)
		default:
			log.Printf("RoutingActor: dropping unrecognized message %T", msg)
		}
	}
}

func (a *RoutingActor) aggregate(m nearbyLotsMsg) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, err := a.supervisor.GetRegistered(ctx)
	if err != nil {
		log.Printf("RoutingActor: registry snapshot failed: %v", err)
		m.replyTo <- []domain.NearbyLot{}
		return
	}

	lotIDs := make([]string, 0, len(registry))
	for lotID := range registry {
		lotIDs = append(lotIDs, lotID)
	}

	results := make([]domain.NearbyLot, len(lotIDs))
	var failed atomic.Bool
	var wg sync.WaitGroup
	for i, lotID := range lotIDs {
		wg.Add(1)
		go func(i int, lotID string) {
			defer wg.Done()
			status, err := a.supervisor.GetStatus(ctx, lotID)
			if err != nil {
				log.Printf("RoutingActor: status ask for lot %s failed: %v", lotID, err)
				failed.Store(true)
				cancel()
				return
			}
			results[i] = domain.NearbyLot{
				LotID:            status.LotID,
				Lat:              status.Lat,
				Lng:              status.Lng,
				MaxCapacity:      status.MaxCapacity,
				CurrentOccupancy: status.CurrentOccupancy,
				AvailableSpaces:  status.AvailableSpaces(),
				DistanceMeters:   haversineMeters(m.userLat, m.userLng, status.Lat, status.Lng),
			}
		}(i, lotID)
	}
	wg.Wait()

	if failed.Load() {
		m.replyTo <- []domain.NearbyLot{}
		return
	}

	ranked := results[:0:len(results)]
	for _, lot := range results {
		if m.onlyAvailable && lot.AvailableSpaces <= 0 {
			continue
		}
		ranked = append(ranked, lot)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})
	if m.limit > 0 && len(ranked) > m.limit {
		ranked = ranked[:m.limit]
	}

	log.Printf("RoutingActor: found %d nearby lots for (%f, %f)", len(ranked), m.userLat, m.userLng)
	m.replyTo <- ranked
}

// haversineMeters is the great-circle distance between two points.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
