package di

import (
	authadapters "tradedesk_backend/internal/feature/auth/adapters"
	"tradedesk_backend/internal/feature/auth/usecase"
	"tradedesk_backend/internal/platform/session"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the relational database.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewStore(rdb, "session")
	}
	return authadapters.NewSessionGorm(db)
}
