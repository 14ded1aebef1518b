package controller_test

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"anime-api/internal/models"
	"anime-api/internal/repository"
)

// memStore mimics the animes table: unique titles, id ordering and
// database-stamped timestamps.
type memStore struct {
	mu    sync.Mutex
	rows  map[string]models.Anime
	clock time.Time

	failWith error // returned by every call when set
	failRead bool  // GetByID fails with failWith only

	onRead       func(id string) // runs once after the next GetByID, outside the lock
	listGate     chan struct{}   // List blocks until closed
	listCalls    int
	listDeadline bool // whether the last List ctx carried a deadline
}

func newMemStore() *memStore {
	return &memStore{
		rows:  make(map[string]models.Anime),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) List(ctx context.Context, limit, offset int) ([]models.Anime, error) {
	s.mu.Lock()
	s.listCalls++
	_, s.listDeadline = ctx.Deadline()
	gate := s.listGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil && !s.failRead {
		return nil, s.failWith
	}
	ids := make([]string, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []models.Anime{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, s.rows[ids[i]])
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (models.Anime, error) {
	a, err := s.getByID(id)
	s.mu.Lock()
	hook := s.onRead
	s.onRead = nil
	s.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return a, err
}

func (s *memStore) getByID(id string) (models.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.Anime{}, s.failWith
	}
	a, ok := s.rows[id]
	if !ok {
		return models.Anime{}, repository.ErrNotFound
	}
	return a, nil
}

func (s *memStore) Create(_ context.Context, id, title string, description sql.NullString) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil && !s.failRead {
		return s.failWith
	}
	if s.titleTaken(title, "") {
		return repository.ErrDuplicateTitle
	}
	ts := sql.NullTime{Time: s.now(), Valid: true}
	s.rows[id] = models.Anime{ID: id, Title: title, Description: description, CreatedAt: ts, UpdatedAt: ts}
	return nil
}

func (s *memStore) Update(_ context.Context, id, title string, description sql.NullString) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil && !s.failRead {
		return s.failWith
	}
	a, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.titleTaken(title, id) {
		return repository.ErrDuplicateTitle
	}
	a.Title = title
	a.Description = description
	a.UpdatedAt = sql.NullTime{Time: s.now(), Valid: true}
	s.rows[id] = a
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil && !s.failRead {
		return s.failWith
	}
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *memStore) titleTaken(title, except string) bool {
	for id, a := range s.rows {
		if id != except && a.Title == title {
			return true
		}
	}
	return false
}

// memCache versions every id like the real cache: a miss hands out the
// current version and Fill is dropped once Invalidate has bumped it.
type memCache struct {
	mu       sync.Mutex
	data     map[string]models.AnimeResponse
	versions map[string]int
}

func newMemCache() *memCache {
	return &memCache{
		data:     make(map[string]models.AnimeResponse),
		versions: make(map[string]int),
	}
}

func (c *memCache) Get(_ context.Context, id string) (models.AnimeResponse, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.data[id]; ok {
		return a, "", true
	}
	return models.AnimeResponse{}, strconv.Itoa(c.versions[id]), false
}

func (c *memCache) Fill(_ context.Context, a models.AnimeResponse, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strconv.Itoa(c.versions[a.ID]) == version {
		c.data[a.ID] = a
	}
}

func (c *memCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	c.versions[id]++
}

// put seeds an entry directly.
func (c *memCache) put(a models.AnimeResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[a.ID] = a
}

func (c *memCache) cached(id string) (models.AnimeResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.data[id]
	return a, ok
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.AnimeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev *models.AnimeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Action)
	}
	return out
}

var errBoom = errors.New("connection refused")
