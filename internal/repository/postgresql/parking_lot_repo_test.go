package postgresql

import (
	"fmt"
	"testing"

	"parking_tracker/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestAttachSlots(t *testing.T) {
	lots := []domain.ParkingLot{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	slots := []domain.ParkingSlot{
		{ID: 10, LotID: 1, SlotNumber: 1},
		{ID: 11, LotID: 1, SlotNumber: 2, Status: true},
		{ID: 20, LotID: 2, SlotNumber: 1},
		{ID: 99, LotID: 42, SlotNumber: 1},
	}

	attachSlots(lots, slots)

	assert.Len(t, lots[0].Slots, 2)
	assert.Equal(t, []int{10, 11}, []int{lots[0].Slots[0].ID, lots[0].Slots[1].ID})
	assert.Len(t, lots[1].Slots, 1)
	assert.NotNil(t, lots[2].Slots)
	assert.Empty(t, lots[2].Slots)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "plain error", err: assert.AnError, want: false},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "wrapped unique violation", err: fmt.Errorf("insert lot: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "other postgres error", err: &pgconn.PgError{Code: "23503"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
