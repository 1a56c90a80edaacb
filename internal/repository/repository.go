package repository

import (
	"context"
	"errors"

	"parking_tracker/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

type ParkingLotRepository interface {
	// FindAll returns every lot ordered by id. Slots are attached only when
	// withSlots is set.
	FindAll(ctx context.Context, withSlots bool) ([]domain.ParkingLot, error)
	FindByName(ctx context.Context, name string) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	// CreateWithSlots inserts the lot and all of lot.Slots in one transaction.
	// It returns ErrDuplicateEntry when a lot with the same name already exists.
	CreateWithSlots(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
}

type ParkingSlotRepository interface {
	FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSlot, error)
	// UpdateStatuses writes the status of every given slot of the lot in one
	// transaction. Either all rows change or none do.
	UpdateStatuses(ctx context.Context, lotID int, slots []domain.ParkingSlot) error
}
