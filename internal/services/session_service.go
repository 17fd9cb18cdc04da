package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/repositories"
	"restaurant_backend/pkg/utils"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a scanned QR code keeps a table session open.
const DefaultSessionTTL = 60 * time.Minute

// StartSessionRequest is sent by the QR landing page.
type StartSessionRequest struct {
	TableID int64 `json:"table_id" binding:"required,gt=0"`
}

// SessionResponse is what the visitor keeps for later requests.
type SessionResponse struct {
	Token      string    `json:"token"`
	TableID    int64     `json:"table_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLMinutes int       `json:"ttl_minutes"`
}

// SessionService issues and resolves table ordering sessions.
type SessionService interface {
	StartSession(ctx context.Context, tableID int64) (*SessionResponse, error)
	Resolve(ctx context.Context, token string) (*models.OrderSession, error)
	EndTableSessions(ctx context.Context, tableID int64) (int, error)
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	cache       repositories.SessionCache
	db          repositories.SQLExecutor
	ttl         time.Duration
	now         func() time.Time
}

// NewSessionService creates a new instance of SessionService.
// A nil cache disables caching; a non-positive ttl falls back to DefaultSessionTTL.
func NewSessionService(sr repositories.SessionRepository, cache repositories.SessionCache, db repositories.SQLExecutor, ttl time.Duration) SessionService {
	if cache == nil {
		cache = repositories.NewNoopSessionCache()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{sessionRepo: sr, cache: cache, db: db, ttl: ttl, now: time.Now}
}

func newSessionToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *sessionService) StartSession(ctx context.Context, tableID int64) (*SessionResponse, error) {
	if _, err := s.sessionRepo.GetDiningTable(ctx, s.db, tableID); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrTableNotFound, tableID)
		}
		return nil, fmt.Errorf("failed to look up table %d: %w", tableID, err)
	}

	now := s.now()
	session := &models.OrderSession{
		TableID:   tableID,
		Token:     newSessionToken(),
		ExpiresAt: now.Add(s.ttl),
		IsActive:  true,
		CreatedAt: now,
	}
	if err := s.sessionRepo.CreateSession(ctx, s.db, session); err != nil {
		return nil, fmt.Errorf("failed to create session for table %d: %w", tableID, err)
	}
	if err := s.cache.Put(ctx, session); err != nil {
		utils.LogError(err, "StartSession: failed to cache session")
	}

	utils.LogInfo("Table session started", map[string]interface{}{"table_id": tableID, "session_id": session.ID})
	return &SessionResponse{
		Token:      session.Token,
		TableID:    tableID,
		ExpiresAt:  session.ExpiresAt,
		TTLMinutes: int(s.ttl / time.Minute),
	}, nil
}

// Resolve returns the session behind token if it is active and unexpired.
// Expiry is checked here on every call; nothing sweeps old sessions.
func (s *sessionService) Resolve(ctx context.Context, token string) (*models.OrderSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidOrExpiredSession
	}

	session, err := s.cache.Lookup(ctx, token)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			utils.LogError(err, "Resolve: session cache lookup failed")
		}
		session, err = s.sessionRepo.FindSessionByToken(ctx, s.db, token)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrInvalidOrExpiredSession
			}
			return nil, fmt.Errorf("failed to look up session: %w", err)
		}
		if session.ValidAt(s.now()) {
			if err := s.cache.Put(ctx, session); err != nil {
				utils.LogError(err, "Resolve: failed to cache session")
			}
		}
	}

	if !session.ValidAt(s.now()) {
		return nil, ErrInvalidOrExpiredSession
	}
	return session, nil
}

// EndTableSessions closes every open session of the table, e.g. when the party leaves.
func (s *sessionService) EndTableSessions(ctx context.Context, tableID int64) (int, error) {
	if _, err := s.sessionRepo.GetDiningTable(ctx, s.db, tableID); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: id %d", ErrTableNotFound, tableID)
		}
		return 0, fmt.Errorf("failed to look up table %d: %w", tableID, err)
	}

	tokens, err := s.sessionRepo.DeactivateTableSessions(ctx, s.db, tableID)
	if err != nil {
		return 0, fmt.Errorf("failed to end sessions of table %d: %w", tableID, err)
	}
	// Evict every unexpired token, not only the ones closed now, so that a retry
	// after a failed eviction still clears what the cache holds.
	cached, err := s.sessionRepo.ListUnexpiredSessionTokens(ctx, s.db, tableID, s.now())
	if err != nil {
		return len(tokens), fmt.Errorf("failed to list sessions of table %d: %w", tableID, err)
	}
	if err := s.cache.Evict(ctx, cached...); err != nil {
		utils.LogError(err, "EndTableSessions: failed to evict cached sessions")
		return len(tokens), fmt.Errorf("%w: table %d", ErrSessionCacheUnavailable, tableID)
	}

	utils.LogInfo("Table sessions ended", map[string]interface{}{"table_id": tableID, "sessions": len(tokens)})
	return len(tokens), nil
}
