package service

import (
	"context"

	"parking_tracker/internal/domain"
)

type mockLotRepo struct {
	findAllFn         func(ctx context.Context, withSlots bool) ([]domain.ParkingLot, error)
	findByNameFn      func(ctx context.Context, name string) (*domain.ParkingLot, error)
	findByIDFn        func(ctx context.Context, id int) (*domain.ParkingLot, error)
	createWithSlotsFn func(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)

	calls int
}

func (m *mockLotRepo) FindAll(ctx context.Context, withSlots bool) ([]domain.ParkingLot, error) {
	m.calls++
	if m.findAllFn != nil {
		return m.findAllFn(ctx, withSlots)
	}
	return nil, nil
}

func (m *mockLotRepo) FindByName(ctx context.Context, name string) (*domain.ParkingLot, error) {
	m.calls++
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return nil, nil
}

func (m *mockLotRepo) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	m.calls++
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockLotRepo) CreateWithSlots(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	m.calls++
	if m.createWithSlotsFn != nil {
		return m.createWithSlotsFn(ctx, lot)
	}
	return lot, nil
}

type mockSlotRepo struct {
	findByLotIDFn    func(ctx context.Context, lotID int) ([]domain.ParkingSlot, error)
	updateStatusesFn func(ctx context.Context, lotID int, slots []domain.ParkingSlot) error

	updated [][]domain.ParkingSlot
}

func (m *mockSlotRepo) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSlot, error) {
	if m.findByLotIDFn != nil {
		return m.findByLotIDFn(ctx, lotID)
	}
	return nil, nil
}

func (m *mockSlotRepo) UpdateStatuses(ctx context.Context, lotID int, slots []domain.ParkingSlot) error {
	m.updated = append(m.updated, slots)
	if m.updateStatusesFn != nil {
		return m.updateStatusesFn(ctx, lotID, slots)
	}
	return nil
}

// memLotCache follows the generation rules of LotListCache.
type memLotCache struct {
	lots            []domain.ParkingLot
	warm            bool
	generation      int64
	entryGeneration int64
	invalidated     int
}

func (c *memLotCache) GetLots(context.Context) ([]domain.ParkingLot, int64, bool) {
	if c.warm && c.entryGeneration == c.generation {
		return c.lots, c.generation, true
	}
	return nil, c.generation, false
}

func (c *memLotCache) SetLots(_ context.Context, generation int64, lots []domain.ParkingLot) {
	if generation < 0 || generation != c.generation {
		return
	}
	c.lots, c.warm, c.entryGeneration = lots, true, generation
}

func (c *memLotCache) Invalidate(context.Context) {
	c.generation++
	c.lots, c.warm = nil, false
	c.invalidated++
}
