package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ravenlane/compo/internal/adapter/feedcache"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/domain/repository"
)

// FeedCache is the cache surface the catalogue needs; *feedcache.Cache
// implements it.
type FeedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Bust(ctx context.Context, key string) error
}

// CompetitionUseCase serves the public competition catalogue and the
// admin mutations behind it. The home feed goes through the redis cache;
// admin writes bust it so the next read repopulates.
type CompetitionUseCase struct {
	competitions repository.CompetitionRepository
	cache        FeedCache
	logger       *slog.Logger
}

// NewCompetitionUseCase constructs CompetitionUseCase.
func NewCompetitionUseCase(competitions repository.CompetitionRepository, cache FeedCache, logger *slog.Logger) *CompetitionUseCase {
	return &CompetitionUseCase{competitions: competitions, cache: cache, logger: logger}
}

// HomeFeed lists live competitions, served from cache when fresh.
func (u *CompetitionUseCase) HomeFeed(ctx context.Context) ([]model.Competition, error) {
	if raw, ok := u.cache.Get(ctx, feedcache.HomeFeedKey); ok {
		var cached []model.Competition
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		u.logger.Warn("discarding undecodable home feed cache entry")
	}

	live, err := u.competitions.ListLive(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(live); err == nil {
		u.cache.Set(ctx, feedcache.HomeFeedKey, raw)
	}
	return live, nil
}

// GetByID returns one competition regardless of status.
func (u *CompetitionUseCase) GetByID(ctx context.Context, id int64) (*model.Competition, error) {
	return u.competitions.GetByID(ctx, id)
}

// Create persists a new competition and busts the home feed.
func (u *CompetitionUseCase) Create(ctx context.Context, competition *model.Competition) (*model.Competition, error) {
	created, err := u.competitions.Create(ctx, competition)
	if err != nil {
		return nil, err
	}
	if err := u.cache.Bust(ctx, feedcache.HomeFeedKey); err != nil {
		u.logger.Warn("home feed bust failed", slog.String("error", err.Error()))
	}
	return created, nil
}

// BustHomeFeed drops the cached feed on demand.
func (u *CompetitionUseCase) BustHomeFeed(ctx context.Context) error {
	return u.cache.Bust(ctx, feedcache.HomeFeedKey)
}
