package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/repository"

	"github.com/lib/pq"
)

const lotColumns = `id, name, location, latitude, longitude, total_slots, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type pgParkingLotRepository struct {
	db *sql.DB
}

func NewPgParkingLotRepository(db *sql.DB) repository.ParkingLotRepository {
	return &pgParkingLotRepository{db: db}
}

func scanLot(row rowScanner, lot *domain.ParkingLot) error {
	if err := row.Scan(&lot.ID, &lot.Name, &lot.Location, &lot.Latitude, &lot.Longitude,
		&lot.TotalSlots, &lot.CreatedAt, &lot.UpdatedAt); err != nil {
		return err
	}
	lot.CreatedAt = lot.CreatedAt.In(time.UTC)
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return nil
}

func (r *pgParkingLotRepository) FindAll(ctx context.Context, withSlots bool) ([]domain.ParkingLot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+lotColumns+` FROM parking_lots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll: %w", err)
	}
	defer rows.Close()

	lots := []domain.ParkingLot{}
	for rows.Next() {
		var lot domain.ParkingLot
		if err := scanLot(rows, &lot); err != nil {
			return nil, fmt.Errorf("ParkingLotRepository.FindAll (scanning row): %w", err)
		}
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll (rows error): %w", err)
	}
	if !withSlots || len(lots) == 0 {
		return lots, nil
	}

	slots, err := querySlots(ctx, r.db, "")
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll (slots): %w", err)
	}
	attachSlots(lots, slots)
	return lots, nil
}

func (r *pgParkingLotRepository) FindByName(ctx context.Context, name string) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{}
	row := r.db.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM parking_lots WHERE name = $1 ORDER BY id LIMIT 1`, name)
	if err := scanLot(row, lot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingLotRepository.FindByName: %w", err)
	}
	return r.withSlots(ctx, lot)
}

func (r *pgParkingLotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{}
	row := r.db.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM parking_lots WHERE id = $1`, id)
	if err := scanLot(row, lot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingLotRepository.FindByID: %w", err)
	}
	return r.withSlots(ctx, lot)
}

func (r *pgParkingLotRepository) withSlots(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	slots, err := querySlots(ctx, r.db, `WHERE parking_lot_id = $1`, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository (slots of lot %d): %w", lot.ID, err)
	}
	lot.Slots = slots
	return lot, nil
}

func (r *pgParkingLotRepository) CreateWithSlots(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSlots (begin): %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// ON CONFLICT DO NOTHING turns a concurrent create of the same name into
	// an empty result instead of an aborted transaction.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO parking_lots (name, location, latitude, longitude, total_slots)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, created_at, updated_at`,
		lot.Name, lot.Location, lot.Latitude, lot.Longitude, lot.TotalSlots,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: parking lot '%s'", repository.ErrDuplicateEntry, lot.Name)
		}
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSlots: %w", err)
	}
	lot.CreatedAt = lot.CreatedAt.In(time.UTC)
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)

	numbers := make(pq.Int64Array, len(lot.Slots))
	statuses := make(pq.BoolArray, len(lot.Slots))
	for i, s := range lot.Slots {
		numbers[i] = int64(s.SlotNumber)
		statuses[i] = s.Status
	}
	rows, err := tx.QueryContext(ctx, `
		INSERT INTO parking_slots (parking_lot_id, slot_number, status)
		SELECT $1, u.slot_number, u.status
		FROM unnest($2::int[], $3::bool[]) AS u(slot_number, status)
		RETURNING id, parking_lot_id, slot_number, status, updated_at`,
		lot.ID, numbers, statuses)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSlots (slots): %w", err)
	}
	slots := make([]domain.ParkingSlot, 0, len(lot.Slots))
	for rows.Next() {
		var slot domain.ParkingSlot
		if err := rows.Scan(&slot.ID, &slot.LotID, &slot.SlotNumber, &slot.Status, &slot.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ParkingLotRepository.CreateWithSlots (scanning slot): %w", err)
		}
		slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
		slots = append(slots, slot)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSlots (slot rows): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSlots (commit): %w", err)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].SlotNumber < slots[j].SlotNumber })
	lot.Slots = slots
	return lot, nil
}

// attachSlots distributes slots onto their lots. Slot order within a lot is
// kept as given.
func attachSlots(lots []domain.ParkingLot, slots []domain.ParkingSlot) {
	index := make(map[int]int, len(lots))
	for i := range lots {
		index[lots[i].ID] = i
		lots[i].Slots = []domain.ParkingSlot{}
	}
	for _, s := range slots {
		if i, ok := index[s.LotID]; ok {
			lots[i].Slots = append(lots[i].Slots, s)
		}
	}
}
