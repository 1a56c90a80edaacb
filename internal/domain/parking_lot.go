package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ParkingLot struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Location   string        `json:"location"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	TotalSlots int           `json:"totalSlots"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Slots      []ParkingSlot `json:"slots,omitempty"`
}

// WithoutSlots returns a shallow copy of the lot with the slot list dropped.
func (l ParkingLot) WithoutSlots() ParkingLot {
	l.Slots = nil
	return l
}

// LotDetail is the per-lot view returned to a user at a given position.
// FilledSlots counts slots whose status is false and AvailableSlots is
// TotalSlots minus that count. Existing clients read the fields this way.
type LotDetail struct {
	Name           string  `json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Distance       float64 `json:"distance"`
	TotalSlots     int     `json:"totalSlots"`
	AvailableSlots int     `json:"availableSlots"`
	FilledSlots    int     `json:"filledSlots"`
}

type NearbyLotsRequest struct {
	UserLat null.Float `json:"userLat"`
	UserLon null.Float `json:"userLon"`
}

type LotDetailsRequest struct {
	ParkingLotName null.String `json:"parkingLotName"`
	UserLat        null.Float  `json:"userLat"`
	UserLon        null.Float  `json:"userLon"`
}

// UpsertParkingLotDTO is the payload of PUT /api/update-parking-lot. Slot
// lists are pointers so an absent list can be told apart from an empty one.
type UpsertParkingLotDTO struct {
	Name        null.String `json:"name"`
	Location    null.String `json:"location"`
	Latitude    null.Float  `json:"latitude"`
	Longitude   null.Float  `json:"longitude"`
	TotalSlots  null.Int    `json:"totalSlots"`
	FilledSlots *[]int      `json:"filledSlots"`
	FreeSlots   *[]int      `json:"freeSlots"`
}
