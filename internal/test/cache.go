package test

import "context"

// FeedCacheStub is an in-memory feed cache.
type FeedCacheStub struct {
	Entries map[string][]byte
	Busts   int
	BustErr error
}

// NewFeedCacheStub constructs an empty cache stub.
func NewFeedCacheStub() *FeedCacheStub {
	return &FeedCacheStub{Entries: make(map[string][]byte)}
}

// Get returns the stored value and whether it was present.
func (s *FeedCacheStub) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := s.Entries[key]
	return value, ok
}

// Set stores the value.
func (s *FeedCacheStub) Set(_ context.Context, key string, value []byte) {
	if s.Entries == nil {
		s.Entries = make(map[string][]byte)
	}
	s.Entries[key] = value
}

// Bust removes the entry and counts the call.
func (s *FeedCacheStub) Bust(_ context.Context, key string) error {
	s.Busts++
	if s.BustErr != nil {
		return s.BustErr
	}
	delete(s.Entries, key)
	return nil
}
