package repositories

import (
	"context"
	"fmt"
	"time"

	"restaurant_backend/internal/models"
)

// SessionRepository stores table ordering sessions and reads dining tables.
type SessionRepository interface {
	GetDiningTable(ctx context.Context, executor SQLExecutor, tableID int64) (*models.DiningTable, error)
	CreateSession(ctx context.Context, executor SQLExecutor, session *models.OrderSession) error
	FindSessionByToken(ctx context.Context, executor SQLExecutor, token string) (*models.OrderSession, error)
	// DeactivateTableSessions returns the tokens it switched off.
	DeactivateTableSessions(ctx context.Context, executor SQLExecutor, tableID int64) ([]string, error)
	// ListUnexpiredSessionTokens returns the table's tokens, active or not, that expire after now.
	ListUnexpiredSessionTokens(ctx context.Context, executor SQLExecutor, tableID int64, now time.Time) ([]string, error)
}

type sessionRepository struct{}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository() SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) GetDiningTable(ctx context.Context, executor SQLExecutor, tableID int64) (*models.DiningTable, error) {
	var t models.DiningTable
	err := executor.QueryRowContext(ctx, `SELECT id, name, seats, created_at FROM dining_tables WHERE id = $1`, tableID).
		Scan(&t.ID, &t.Name, &t.Seats, &t.CreatedAt)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting dining table %d", tableID))
	}
	return &t, nil
}

func (r *sessionRepository) CreateSession(ctx context.Context, executor SQLExecutor, session *models.OrderSession) error {
	query := `INSERT INTO order_sessions (table_id, token, expires_at, is_active, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		session.TableID, session.Token, session.ExpiresAt, session.IsActive, session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("creating session for table %d", session.TableID))
	}
	return nil
}

func (r *sessionRepository) FindSessionByToken(ctx context.Context, executor SQLExecutor, token string) (*models.OrderSession, error) {
	var s models.OrderSession
	query := `SELECT id, table_id, token, expires_at, is_active, created_at FROM order_sessions WHERE token = $1`
	err := executor.QueryRowContext(ctx, query, token).
		Scan(&s.ID, &s.TableID, &s.Token, &s.ExpiresAt, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, mapDBError(err, "finding session by token")
	}
	return &s, nil
}

func (r *sessionRepository) DeactivateTableSessions(ctx context.Context, executor SQLExecutor, tableID int64) ([]string, error) {
	query := `UPDATE order_sessions SET is_active = FALSE WHERE table_id = $1 AND is_active RETURNING token`
	rows, err := executor.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("deactivating sessions of table %d", tableID))
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, mapDBError(err, "scanning session token")
		}
		tokens = append(tokens, token)
	}
	if err = rows.Err(); err != nil {
		return nil, mapDBError(err, "iterating session tokens")
	}
	return tokens, nil
}

func (r *sessionRepository) ListUnexpiredSessionTokens(ctx context.Context, executor SQLExecutor, tableID int64, now time.Time) ([]string, error) {
	query := `SELECT token FROM order_sessions WHERE table_id = $1 AND expires_at > $2 ORDER BY id`
	rows, err := executor.QueryContext(ctx, query, tableID, now)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("listing sessions of table %d", tableID))
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, mapDBError(err, "scanning session token")
		}
		tokens = append(tokens, token)
	}
	if err = rows.Err(); err != nil {
		return nil, mapDBError(err, "iterating session tokens")
	}
	return tokens, nil
}
