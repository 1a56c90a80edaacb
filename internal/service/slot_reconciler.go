package service

import "parking_tracker/internal/domain"

// ReconcileSlots returns a copy of existing with every slot whose number is in
// filled marked filled and every slot whose number is in free marked free.
// filled is checked first. Numbers without a matching slot are ignored and
// slots named in neither list keep their status.
func ReconcileSlots(existing []domain.ParkingSlot, filled, free []int) []domain.ParkingSlot {
	filledSet := toSet(filled)
	freeSet := toSet(free)

	merged := make([]domain.ParkingSlot, len(existing))
	for i, slot := range existing {
		if _, ok := filledSet[slot.SlotNumber]; ok {
			slot.Status = true
		} else if _, ok := freeSet[slot.SlotNumber]; ok {
			slot.Status = false
		}
		merged[i] = slot
	}
	return merged
}

// BuildSlots creates slots 1..totalSlots for a new lot. A slot starts filled
// iff its number is listed in filled.
func BuildSlots(totalSlots int, filled []int) []domain.ParkingSlot {
	filledSet := toSet(filled)
	slots := make([]domain.ParkingSlot, 0, totalSlots)
	for n := 1; n <= totalSlots; n++ {
		_, isFilled := filledSet[n]
		slots = append(slots, domain.ParkingSlot{SlotNumber: n, Status: isFilled})
	}
	return slots
}

// ChangedSlots returns the slots of after whose status differs from the slot
// at the same position in before.
func ChangedSlots(before, after []domain.ParkingSlot) []domain.ParkingSlot {
	var changed []domain.ParkingSlot
	for i := range after {
		if i >= len(before) || before[i].Status != after[i].Status {
			changed = append(changed, after[i])
		}
	}
	return changed
}

func toSet(numbers []int) map[int]struct{} {
	set := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return set
}
