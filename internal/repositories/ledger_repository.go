package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant_backend/internal/models"
)

// LedgerRepository is the append-only item status history.
// Rows are inserted and read; nothing here updates or deletes them.
type LedgerRepository interface {
	AppendStatus(ctx context.Context, executor SQLExecutor, entry *models.OrderItemStatusEntry) error
	// AppendStatusIfLatest inserts entry only while observedEntryID is still the
	// item's latest entry (0 = item has no entries). It returns ErrConflict otherwise.
	AppendStatusIfLatest(ctx context.Context, executor SQLExecutor, entry *models.OrderItemStatusEntry, observedEntryID int64) error
	LatestStatus(ctx context.Context, executor SQLExecutor, itemID int64) (*models.OrderItemStatusEntry, error)
	StatusHistory(ctx context.Context, executor SQLExecutor, itemID int64) ([]models.OrderItemStatusEntry, error)
}

type ledgerRepository struct{}

// NewLedgerRepository creates a new instance of LedgerRepository.
func NewLedgerRepository() LedgerRepository {
	return &ledgerRepository{}
}

const latestEntryOrder = `ORDER BY h.changed_at DESC, h.id DESC`

func (r *ledgerRepository) AppendStatus(ctx context.Context, executor SQLExecutor, entry *models.OrderItemStatusEntry) error {
	query := `INSERT INTO order_item_status_history (order_item_id, order_item_status_id, changed_by, note, changed_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		entry.OrderItemID, entry.StatusID, entry.ChangedBy, entry.Note, entry.ChangedAt,
	).Scan(&entry.ID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("appending status for order item %d", entry.OrderItemID))
	}
	return nil
}

func (r *ledgerRepository) AppendStatusIfLatest(ctx context.Context, executor SQLExecutor, entry *models.OrderItemStatusEntry, observedEntryID int64) error {
	query := `INSERT INTO order_item_status_history (order_item_id, order_item_status_id, changed_by, note, changed_at)
	          SELECT $1::bigint, $2::bigint, $3::bigint, $4::text, $5::timestamptz
	          WHERE (SELECT h.id FROM order_item_status_history h
	                 WHERE h.order_item_id = $1 ` + latestEntryOrder + ` LIMIT 1) IS NOT DISTINCT FROM $6::bigint
	          RETURNING id`

	observed := sql.NullInt64{Int64: observedEntryID, Valid: observedEntryID > 0}
	err := executor.QueryRowContext(ctx, query,
		entry.OrderItemID, entry.StatusID, entry.ChangedBy, entry.Note, entry.ChangedAt, observed,
	).Scan(&entry.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: order item %d has a newer status than entry %d", ErrConflict, entry.OrderItemID, observedEntryID)
	}
	if err != nil {
		return mapDBError(err, fmt.Sprintf("appending status for order item %d", entry.OrderItemID))
	}
	return nil
}

func (r *ledgerRepository) LatestStatus(ctx context.Context, executor SQLExecutor, itemID int64) (*models.OrderItemStatusEntry, error) {
	query := `SELECT h.id, h.order_item_id, h.order_item_status_id, st.code, h.changed_by, h.note, h.changed_at
	          FROM order_item_status_history h
	          JOIN order_item_statuses st ON st.id = h.order_item_status_id
	          WHERE h.order_item_id = $1 ` + latestEntryOrder + ` LIMIT 1`
	e, err := scanEntry(executor.QueryRowContext(ctx, query, itemID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("reading latest status of order item %d", itemID))
	}
	return e, nil
}

func (r *ledgerRepository) StatusHistory(ctx context.Context, executor SQLExecutor, itemID int64) ([]models.OrderItemStatusEntry, error) {
	query := `SELECT h.id, h.order_item_id, h.order_item_status_id, st.code, h.changed_by, h.note, h.changed_at
	          FROM order_item_status_history h
	          JOIN order_item_statuses st ON st.id = h.order_item_status_id
	          WHERE h.order_item_id = $1
	          ORDER BY h.changed_at ASC, h.id ASC`
	rows, err := executor.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("querying status history of order item %d", itemID))
	}
	defer rows.Close()

	entries := []models.OrderItemStatusEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, mapDBError(err, "scanning status entry")
		}
		entries = append(entries, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, mapDBError(err, "iterating status entries")
	}
	return entries, nil
}

func scanEntry(row scanner) (*models.OrderItemStatusEntry, error) {
	var e models.OrderItemStatusEntry
	if err := row.Scan(&e.ID, &e.OrderItemID, &e.StatusID, &e.Status, &e.ChangedBy, &e.Note, &e.ChangedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
