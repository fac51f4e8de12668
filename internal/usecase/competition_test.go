package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ravenlane/compo/internal/adapter/feedcache"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/test"
	"github.com/ravenlane/compo/internal/usecase"
)

func TestHomeFeedPopulatesAndServesCache(t *testing.T) {
	listCalls := 0
	repo := &test.CompetitionRepositoryStub{
		ListLiveFn: func(context.Context) ([]model.Competition, error) {
			listCalls++
			return []model.Competition{{ID: 1, Title: "Win a thing", Status: model.CompetitionStatusLive}}, nil
		},
	}
	cache := test.NewFeedCacheStub()
	uc := usecase.NewCompetitionUseCase(repo, cache, discardLogger())

	first, err := uc.HomeFeed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one competition, got %d", len(first))
	}
	if _, ok := cache.Entries[feedcache.HomeFeedKey]; !ok {
		t.Fatal("expected feed cached after miss")
	}

	second, err := uc.HomeFeed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listCalls != 1 {
		t.Fatalf("expected cached read to skip the repository, got %d calls", listCalls)
	}
	if len(second) != 1 || second[0].ID != 1 {
		t.Fatalf("unexpected cached feed: %+v", second)
	}
}

func TestHomeFeedDiscardsUndecodableEntry(t *testing.T) {
	repo := &test.CompetitionRepositoryStub{
		ListLiveFn: func(context.Context) ([]model.Competition, error) {
			return []model.Competition{{ID: 2}}, nil
		},
	}
	cache := test.NewFeedCacheStub()
	cache.Entries[feedcache.HomeFeedKey] = []byte("{not json")
	uc := usecase.NewCompetitionUseCase(repo, cache, discardLogger())

	feed, err := uc.HomeFeed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != 2 {
		t.Fatalf("expected fresh feed, got %+v", feed)
	}
	var cached []model.Competition
	if err := json.Unmarshal(cache.Entries[feedcache.HomeFeedKey], &cached); err != nil {
		t.Fatalf("expected repaired cache entry: %v", err)
	}
}

func TestCreateCompetitionBustsFeed(t *testing.T) {
	cache := test.NewFeedCacheStub()
	cache.Entries[feedcache.HomeFeedKey] = []byte("[]")
	uc := usecase.NewCompetitionUseCase(&test.CompetitionRepositoryStub{}, cache, discardLogger())

	created, err := uc.Create(context.Background(), &model.Competition{Title: "New draw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected persisted competition")
	}
	if cache.Busts != 1 {
		t.Fatalf("expected one bust, got %d", cache.Busts)
	}
	if _, ok := cache.Entries[feedcache.HomeFeedKey]; ok {
		t.Fatal("expected feed entry removed")
	}
}

func TestBustHomeFeed(t *testing.T) {
	cache := test.NewFeedCacheStub()
	cache.Entries[feedcache.HomeFeedKey] = []byte("[]")
	uc := usecase.NewCompetitionUseCase(&test.CompetitionRepositoryStub{}, cache, discardLogger())
	if err := uc.BustHomeFeed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Busts != 1 {
		t.Fatalf("expected one bust, got %d", cache.Busts)
	}
}
