// README: Location tracker; latest is defined by greatest timestamp, not arrival order.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"roam/internal/observability"
	"roam/internal/types"
)

var (
	ErrBadSample = errors.New("bad location sample")
	ErrNoSamples = errors.New("no location samples for vehicle")
)

// Broadcaster fans a recorded sample out to live dashboard subscribers.
// Delivery is fire-and-forget.
type Broadcaster interface {
	BroadcastVehicle(vehicleID types.ID, payload []byte)
}

type Service struct {
	store    Store
	bound    int
	hub      Broadcaster
	geocoder *maps.Client
	log      *zap.SugaredLogger

	mu    sync.Mutex
	locks map[types.ID]*sync.Mutex
}

type ServiceOptions struct {
	// HistoryBound caps retained samples per vehicle; oldest evicted first.
	HistoryBound int
	Hub          Broadcaster
	// Geocoder, when set, resolves a human-readable address for the latest
	// position. Optional.
	Geocoder *maps.Client
	Logger   *zap.SugaredLogger
}

func NewService(store Store, opts ServiceOptions) *Service {
	if opts.HistoryBound <= 0 {
		opts.HistoryBound = 100
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Service{
		store:    store,
		bound:    opts.HistoryBound,
		hub:      opts.Hub,
		geocoder: opts.Geocoder,
		log:      opts.Logger,
		locks:    make(map[types.ID]*sync.Mutex),
	}
}

func (s *Service) lockFor(id types.ID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Record appends the sample. Samples arriving out of timestamp order are kept
// in history but never regress the latest position.
func (s *Service) Record(ctx context.Context, sm Sample) error {
	if sm.VehicleID == "" || sm.RecordedAt.IsZero() {
		return ErrBadSample
	}
	if sm.Position.Lat < -90 || sm.Position.Lat > 90 || sm.Position.Lng < -180 || sm.Position.Lng > 180 {
		return ErrBadSample
	}

	l := s.lockFor(sm.VehicleID)
	l.Lock()
	defer l.Unlock()

	if err := s.store.AppendSnapshot(ctx, sm); err != nil {
		return err
	}
	if err := s.store.PushHistory(ctx, sm, s.bound); err != nil {
		return err
	}
	latest, err := s.store.GetLatest(ctx, sm.VehicleID)
	if err != nil {
		return err
	}
	if latest == nil || sm.RecordedAt.After(latest.RecordedAt) {
		if err := s.store.SetLatest(ctx, sm); err != nil {
			return err
		}
	}

	observability.LocationSamples.Inc()
	if s.hub != nil {
		if b, err := json.Marshal(sm); err == nil {
			s.hub.BroadcastVehicle(sm.VehicleID, b)
		}
	}
	return nil
}

// Latest returns the sample with the greatest timestamp seen so far.
func (s *Service) Latest(ctx context.Context, vehicleID types.ID) (*Sample, error) {
	sm, err := s.store.GetLatest(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if sm == nil {
		return nil, ErrNoSamples
	}
	return sm, nil
}

// History returns up to the retention bound of samples, most recent first.
func (s *Service) History(ctx context.Context, vehicleID types.ID) ([]Sample, error) {
	samples, err := s.store.ReadHistory(ctx, vehicleID, s.bound)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].RecordedAt.After(samples[j].RecordedAt)
	})
	return samples, nil
}

// Address reverse-geocodes a position for dashboard display. Returns empty
// when no geocoder is configured.
func (s *Service) Address(ctx context.Context, p types.Point) (string, error) {
	if s.geocoder == nil {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	results, err := s.geocoder.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}
