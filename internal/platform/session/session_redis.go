package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradedesk_backend/internal/feature/auth/domain/entity"
	"tradedesk_backend/internal/feature/auth/usecase"

	"github.com/redis/go-redis/v9"
)

// revokedRetention is how long a revoked session record is kept around
// after revocation so that token reuse can still be detected.
const revokedRetention = 24 * time.Hour

// defaultPrefix is used when no key prefix is supplied.
const defaultPrefix = "session"

// Store implements usecase.SessionRepository on top of Redis.
// Live sessions expire via Redis TTL, so DeleteExpired is a no-op here.
type Store struct {
	client *redis.Client
	prefix string
}

var _ usecase.SessionRepository = (*Store)(nil)

// NewStore creates a session store. An empty prefix falls back to "session".
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// sessionKey returns the Redis key holding a single session record.
func (s *Store) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

// userSessionsKey returns the Redis key of the set of session IDs per user.
func (s *Store) userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", s.prefix, userID)
}

// Create persists a new session. The record and the membership in the
// user's session set are written in one pipeline.
func (s *Store) Create(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.ID), data, ttl)
		pipe.SAdd(ctx, s.userSessionsKey(session.UserID), session.ID)
		return nil
	})
	return err
}

// FindByID retrieves a session by its ID.
func (s *Store) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// FindByUserID retrieves all valid sessions for a user. Session IDs whose
// records already expired are pruned from the user's set as a side effect.
func (s *Store) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	ids, err := s.client.SMembers(ctx, s.userSessionsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*entity.Session
	for _, id := range ids {
		session, err := s.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, usecase.ErrSessionNotFound) {
				// Record expired, drop the stale set member.
				s.client.SRem(ctx, s.userSessionsKey(userID), id)
				continue
			}
			return nil, err
		}
		if session.IsValid() {
			sessions = append(sessions, session)
		}
	}

	return sessions, nil
}

// Revoke marks a session as revoked. The record is kept for a while so
// that reuse of the revoked token can be detected and punished.
func (s *Store) Revoke(ctx context.Context, id string) error {
	session, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	session.RevokedAt = &now

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.client.Set(ctx, s.sessionKey(id), data, revokedRetention).Err()
}

// RevokeAllByUserID revokes every session the user currently has.
func (s *Store) RevokeAllByUserID(ctx context.Context, userID uint) error {
	ids, err := s.client.SMembers(ctx, s.userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := s.Revoke(ctx, id); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			return err
		}
	}

	return nil
}

// DeleteExpired is a no-op because Redis evicts expired records itself.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// CountByUserID returns the number of valid sessions for a user.
func (s *Store) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	sessions, err := s.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}

// DeleteOldestByUserID deletes the user's oldest session outright.
// Used when the per-user session cap is reached.
func (s *Store) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	sessions, err := s.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		return nil
	}

	oldest := sessions[0]
	for _, sess := range sessions[1:] {
		if sess.CreatedAt.Before(oldest.CreatedAt) {
			oldest = sess
		}
	}

	if err := s.client.Del(ctx, s.sessionKey(oldest.ID)).Err(); err != nil {
		return err
	}

	return s.client.SRem(ctx, s.userSessionsKey(userID), oldest.ID).Err()
}
