package usecase_test

import (
	"context"
	"time"

	"github.com/fardannozami/consistency-tracker/internal/domain"
)

type mockStore struct {
	blobs   map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{blobs: make(map[string][]byte)}
}

func (m *mockStore) Load(ctx context.Context, key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	blob, ok := m.blobs[key]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return blob, nil
}

func (m *mockStore) Save(ctx context.Context, key string, blob []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

// fakeClock is a settable clock for pinning "today".
type fakeClock struct {
	now time.Time
}

func newFakeClock(year int, month time.Month, day int) *fakeClock {
	return &fakeClock{now: time.Date(year, month, day, 10, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advanceDays(n int) {
	c.now = c.now.AddDate(0, 0, n)
}
