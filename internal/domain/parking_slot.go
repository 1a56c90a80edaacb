package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ParkingSlot struct {
	ID         int       `json:"id"`
	LotID      int       `json:"parkingLotId"`
	SlotNumber int       `json:"slotNumber"`
	Status     bool      `json:"status"` // true = filled
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UpdateSlotStatusDTO is accepted both over HTTP and from the SQS slot queue.
type UpdateSlotStatusDTO struct {
	ParkingLotID null.Int `json:"parkingLotId"`
	FilledSlots  *[]int   `json:"filledSlots"`
	FreeSlots    *[]int   `json:"freeSlots"`
}
