package controller

import (
	"context"
	"database/sql"

	"golang.org/x/sync/singleflight"

	"anime-api/internal/models"
)

// AnimeStore is the data access used by the anime handlers.
type AnimeStore interface {
	List(ctx context.Context, limit, offset int) ([]models.Anime, error)
	GetByID(ctx context.Context, id string) (models.Anime, error)
	Create(ctx context.Context, id, title string, description sql.NullString) error
	Update(ctx context.Context, id, title string, description sql.NullString) error
	Delete(ctx context.Context, id string) error
}

// AnimeCache caches single records by id. Get returns a version on a miss;
// Fill must drop the record if Invalidate ran for the id since that Get.
type AnimeCache interface {
	Get(ctx context.Context, id string) (models.AnimeResponse, string, bool)
	Fill(ctx context.Context, a models.AnimeResponse, version string)
	Invalidate(ctx context.Context, id string)
}

// EventPublisher emits change events after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, ev *models.AnimeEvent) error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Handler serves the anime HTTP API.
type Handler struct {
	store  AnimeStore
	cache  AnimeCache
	events EventPublisher
	deps   map[string]Pinger
	list   singleflight.Group
}

// New wires the handler. deps are checked by the readiness endpoint, keyed by name.
func New(store AnimeStore, cache AnimeCache, events EventPublisher, deps map[string]Pinger) *Handler {
	return &Handler{
		store:  store,
		cache:  cache,
		events: events,
		deps:   deps,
	}
}
