package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/logger"
	"parking_tracker/internal/metrics"
	"parking_tracker/internal/repository"

	"github.com/sirupsen/logrus"
)

const maxSlotsPerLot = 10000

// UpsertOutcome tells whether an upsert created the lot or updated it.
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)

// LotUpsertService handles every write to lots and slot statuses.
type LotUpsertService struct {
	lotRepo  repository.ParkingLotRepository
	slotRepo repository.ParkingSlotRepository
	cache    LotListCache
}

func NewLotUpsertService(lotRepo repository.ParkingLotRepository, slotRepo repository.ParkingSlotRepository, cache LotListCache) *LotUpsertService {
	if cache == nil {
		cache = nopLotCache{}
	}
	return &LotUpsertService{
		lotRepo:  lotRepo,
		slotRepo: slotRepo,
		cache:    cache,
	}
}

// UpsertParkingLot creates the named lot with freshly numbered slots when it
// does not exist, otherwise it merges the filled/free assertions into the
// existing slots. Location, coordinates and totalSlots of an existing lot are
// never changed.
func (s *LotUpsertService) UpsertParkingLot(ctx context.Context, dto domain.UpsertParkingLotDTO) (*domain.ParkingLot, UpsertOutcome, error) {
	if !dto.Name.Valid || strings.TrimSpace(dto.Name.String) == "" {
		return nil, "", missing("name")
	}
	filled, free, err := slotLists(dto.FilledSlots, dto.FreeSlots)
	if err != nil {
		return nil, "", err
	}
	name := dto.Name.String

	lot, err := s.lotRepo.FindByName(ctx, name)
	switch {
	case err == nil:
		return s.update(ctx, lot, filled, free)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, "", &StoreError{Op: "find parking lot by name", Err: err}
	}

	newLot, err := newParkingLot(dto, filled)
	if err != nil {
		return nil, "", err
	}
	created, err := s.lotRepo.CreateWithSlots(ctx, newLot)
	if err == nil {
		s.cache.Invalidate(ctx)
		metrics.LotUpserts.WithLabelValues(string(OutcomeCreated)).Inc()
		logger.Log.WithFields(logrus.Fields{
			"lot_id":      created.ID,
			"name":        created.Name,
			"total_slots": created.TotalSlots,
		}).Info("parking lot created")
		return created, OutcomeCreated, nil
	}
	if !errors.Is(err, repository.ErrDuplicateEntry) {
		return nil, "", &StoreError{Op: "create parking lot", Err: err}
	}

	// Another request created the lot between the lookup and the insert.
	logger.Log.WithField("name", name).Warn("parking lot created concurrently, applying as update")
	lot, err = s.lotRepo.FindByName(ctx, name)
	if err != nil {
		return nil, "", &StoreError{Op: "reload parking lot by name", Err: err}
	}
	return s.update(ctx, lot, filled, free)
}

// UpdateSlotStatus applies filled/free assertions to the lot with the given
// id. It never creates a lot.
func (s *LotUpsertService) UpdateSlotStatus(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error) {
	if !dto.ParkingLotID.Valid {
		return nil, missing("parkingLotId")
	}
	filled, free, err := slotLists(dto.FilledSlots, dto.FreeSlots)
	if err != nil {
		return nil, err
	}

	id := int(dto.ParkingLotID.Int64)
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Key: fmt.Sprintf("with id %d", id)}
		}
		return nil, &StoreError{Op: "find parking lot by id", Err: err}
	}
	return s.applySlotUpdate(ctx, lot, filled, free)
}

func (s *LotUpsertService) update(ctx context.Context, lot *domain.ParkingLot, filled, free []int) (*domain.ParkingLot, UpsertOutcome, error) {
	updated, err := s.applySlotUpdate(ctx, lot, filled, free)
	if err != nil {
		return nil, "", err
	}
	metrics.LotUpserts.WithLabelValues(string(OutcomeUpdated)).Inc()
	return updated, OutcomeUpdated, nil
}

func (s *LotUpsertService) applySlotUpdate(ctx context.Context, lot *domain.ParkingLot, filled, free []int) (*domain.ParkingLot, error) {
	merged := ReconcileSlots(lot.Slots, filled, free)
	changed := ChangedSlots(lot.Slots, merged)
	if len(changed) > 0 {
		if err := s.slotRepo.UpdateStatuses(ctx, lot.ID, changed); err != nil {
			return nil, &StoreError{Op: "update slot statuses", Err: err}
		}
		s.cache.Invalidate(ctx)
		metrics.SlotStatusChanges.Add(float64(len(changed)))
	}
	logger.Log.WithFields(logrus.Fields{
		"lot_id":  lot.ID,
		"changed": len(changed),
	}).Debug("slot statuses reconciled")

	lot.Slots = merged
	return lot, nil
}

func slotLists(filled, free *[]int) ([]int, []int, error) {
	if filled == nil {
		return nil, nil, &ValidationError{Field: "filledSlots", Message: "must be an array"}
	}
	if free == nil {
		return nil, nil, &ValidationError{Field: "freeSlots", Message: "must be an array"}
	}
	return *filled, *free, nil
}

func newParkingLot(dto domain.UpsertParkingLotDTO, filled []int) (*domain.ParkingLot, error) {
	if !dto.Location.Valid || strings.TrimSpace(dto.Location.String) == "" {
		return nil, missing("location")
	}
	if !dto.Latitude.Valid {
		return nil, missing("latitude")
	}
	if !dto.Longitude.Valid {
		return nil, missing("longitude")
	}
	if !dto.TotalSlots.Valid {
		return nil, missing("totalSlots")
	}
	total := dto.TotalSlots.Int64
	if total <= 0 || total > maxSlotsPerLot {
		return nil, &ValidationError{Field: "totalSlots", Message: fmt.Sprintf("must be between 1 and %d", maxSlotsPerLot)}
	}

	return &domain.ParkingLot{
		Name:       dto.Name.String,
		Location:   dto.Location.String,
		Latitude:   dto.Latitude.Float64,
		Longitude:  dto.Longitude.Float64,
		TotalSlots: int(total),
		Slots:      BuildSlots(int(total), filled),
	}, nil
}
