package service

import (
	"context"

	"parking_tracker/internal/domain"
)

// LotListCache holds the full lot list (with slots) between writes.
// Implementations swallow their own failures; a miss falls back to the store.
//
// GetLots reports the cache generation seen at read time, or a negative value
// when it could not be read. SetLots stores the list only if the generation is
// still the same, so a snapshot read before a concurrent Invalidate is dropped.
type LotListCache interface {
	GetLots(ctx context.Context) (lots []domain.ParkingLot, generation int64, ok bool)
	SetLots(ctx context.Context, generation int64, lots []domain.ParkingLot)
	Invalidate(ctx context.Context)
}

type nopLotCache struct{}

func (nopLotCache) GetLots(context.Context) ([]domain.ParkingLot, int64, bool) { return nil, -1, false }
func (nopLotCache) SetLots(context.Context, int64, []domain.ParkingLot)        {}
func (nopLotCache) Invalidate(context.Context)                                 {}
