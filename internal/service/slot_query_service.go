package service

import (
	"context"
	"fmt"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/repository"
)

type SlotQueryService struct {
	slotRepo repository.ParkingSlotRepository
}

func NewSlotQueryService(slotRepo repository.ParkingSlotRepository) *SlotQueryService {
	return &SlotQueryService{slotRepo: slotRepo}
}

// ListSlots returns the slots of a lot ordered by slot number. A lot always
// owns at least one slot, so an empty result means the lot does not exist.
func (s *SlotQueryService) ListSlots(ctx context.Context, lotID int) ([]domain.ParkingSlot, error) {
	slots, err := s.slotRepo.FindByLotID(ctx, lotID)
	if err != nil {
		return nil, &StoreError{Op: "list parking slots", Err: err}
	}
	if len(slots) == 0 {
		return nil, &NotFoundError{Key: fmt.Sprintf("with id %d", lotID)}
	}
	return slots, nil
}
