package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// CatalogSeeder inserts the built-in achievement catalog.
type CatalogSeeder interface {
	SeedCatalog(ctx context.Context) (int64, error)
}

// SeedService guards operator seeding behind a shared token.
type SeedService interface {
	SeedAchievements(ctx context.Context, token string) (int64, error)
}

type seedService struct {
	catalog CatalogSeeder
	token   string
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service. An empty token disables seeding.
func NewSeedService(catalog CatalogSeeder, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		catalog: catalog,
		token:   strings.TrimSpace(token),
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedAchievements(ctx context.Context, token string) (int64, error) {
	if s.token == "" {
		return 0, ErrSeedDisabled
	}
	if subtle.ConstantTimeCompare([]byte(s.token), []byte(strings.TrimSpace(token))) != 1 {
		return 0, ErrSeedUnauthorized
	}

	inserted, err := s.catalog.SeedCatalog(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("inserted", inserted).Msg("achievement catalog seeded")
	return inserted, nil
}
