package service

import (
	"context"
	"errors"
	"fmt"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/geo"
	"parking_tracker/internal/repository"
)

// DefaultNearbyRadiusKm is the nearby search radius used when none is configured.
const DefaultNearbyRadiusKm = 10.0

// LotQueryService answers the read-only lot queries.
type LotQueryService struct {
	lotRepo  repository.ParkingLotRepository
	cache    LotListCache
	radiusKm float64
	distance func(lat1, lon1, lat2, lon2 float64) float64
}

// NewLotQueryService builds the read side. cache may be nil and a
// non-positive radius means DefaultNearbyRadiusKm.
func NewLotQueryService(lotRepo repository.ParkingLotRepository, cache LotListCache, radiusKm float64) *LotQueryService {
	if cache == nil {
		cache = nopLotCache{}
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	return &LotQueryService{
		lotRepo:  lotRepo,
		cache:    cache,
		radiusKm: radiusKm,
		distance: geo.DistanceKm,
	}
}

// ListParkingLots returns every lot with its slots, from the cache when warm.
func (s *LotQueryService) ListParkingLots(ctx context.Context) ([]domain.ParkingLot, error) {
	cached, generation, ok := s.cache.GetLots(ctx)
	if ok {
		return cached, nil
	}
	lots, err := s.lotRepo.FindAll(ctx, true)
	if err != nil {
		return nil, &StoreError{Op: "list parking lots", Err: err}
	}
	s.cache.SetLots(ctx, generation, lots)
	return lots, nil
}

// FindNearbyParkingLots returns the lots within the configured radius of the
// user, boundary included. Slots are not part of this view.
func (s *LotQueryService) FindNearbyParkingLots(ctx context.Context, req domain.NearbyLotsRequest) ([]domain.ParkingLot, error) {
	if !req.UserLat.Valid {
		return nil, missing("userLat")
	}
	if !req.UserLon.Valid {
		return nil, missing("userLon")
	}

	lots, err := s.ListParkingLots(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]domain.ParkingLot, 0, len(lots))
	for _, lot := range lots {
		d := s.distance(req.UserLat.Float64, req.UserLon.Float64, lot.Latitude, lot.Longitude)
		if d <= s.radiusKm {
			nearby = append(nearby, lot.WithoutSlots())
		}
	}
	return nearby, nil
}

func (s *LotQueryService) GetLotDetails(ctx context.Context, req domain.LotDetailsRequest) (*domain.LotDetail, error) {
	if !req.ParkingLotName.Valid || req.ParkingLotName.String == "" {
		return nil, missing("parkingLotName")
	}
	if !req.UserLat.Valid {
		return nil, missing("userLat")
	}
	if !req.UserLon.Valid {
		return nil, missing("userLon")
	}

	lot, err := s.lotRepo.FindByName(ctx, req.ParkingLotName.String)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Key: fmt.Sprintf("%q", req.ParkingLotName.String)}
		}
		return nil, &StoreError{Op: "find parking lot by name", Err: err}
	}

	// Counted on status == false and reported as filledSlots. Clients depend on
	// this exact pairing, so it is kept as is.
	filled := 0
	for _, slot := range lot.Slots {
		if !slot.Status {
			filled++
		}
	}

	d := s.distance(req.UserLat.Float64, req.UserLon.Float64, lot.Latitude, lot.Longitude)
	return &domain.LotDetail{
		Name:           lot.Name,
		Latitude:       lot.Latitude,
		Longitude:      lot.Longitude,
		Distance:       geo.RoundTo(d, 2),
		TotalSlots:     lot.TotalSlots,
		AvailableSlots: lot.TotalSlots - filled,
		FilledSlots:    filled,
	}, nil
}
