package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/repository"

	"github.com/lib/pq"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type pgParkingSlotRepository struct {
	db *sql.DB
}

func NewPgParkingSlotRepository(db *sql.DB) repository.ParkingSlotRepository {
	return &pgParkingSlotRepository{db: db}
}

func (r *pgParkingSlotRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSlot, error) {
	slots, err := querySlots(ctx, r.db, `WHERE parking_lot_id = $1`, lotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.FindByLotID: %w", err)
	}
	return slots, nil
}

func (r *pgParkingSlotRepository) UpdateStatuses(ctx context.Context, lotID int, slots []domain.ParkingSlot) error {
	if len(slots) == 0 {
		return nil
	}
	ids := make(pq.Int64Array, len(slots))
	statuses := make(pq.BoolArray, len(slots))
	for i, s := range slots {
		ids[i] = int64(s.ID)
		statuses[i] = s.Status
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateStatuses (begin): %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE parking_slots AS s
		SET status = u.status, updated_at = CURRENT_TIMESTAMP
		FROM unnest($2::int[], $3::bool[]) AS u(id, status)
		WHERE s.id = u.id AND s.parking_lot_id = $1`,
		lotID, ids, statuses)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateStatuses: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateStatuses (checking rows affected): %w", err)
	}
	if rowsAffected != int64(len(slots)) {
		return fmt.Errorf("%w: %d of %d slots belong to lot %d", repository.ErrNotFound, rowsAffected, len(slots), lotID)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE parking_lots SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`, lotID); err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateStatuses (touch lot): %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateStatuses (commit): %w", err)
	}
	return nil
}

func querySlots(ctx context.Context, q queryer, where string, args ...any) ([]domain.ParkingSlot, error) {
	query := `SELECT id, parking_lot_id, slot_number, status, updated_at FROM parking_slots ` +
		where + ` ORDER BY parking_lot_id, slot_number`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.ParkingSlot
	for rows.Next() {
		var slot domain.ParkingSlot
		if err := rows.Scan(&slot.ID, &slot.LotID, &slot.SlotNumber, &slot.Status, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning slot row: %w", err)
		}
		slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("slot rows: %w", err)
	}
	return slots, nil
}
