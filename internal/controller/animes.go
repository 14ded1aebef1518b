package controller

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anime-api/internal/models"
	"anime-api/internal/repository"
	"anime-api/pkg/logger"
	"anime-api/pkg/response"
)

// ListAnimes returns one page of animes ordered by id. Identical concurrent
// page requests share a single query.
func (h *Handler) ListAnimes(c *gin.Context) {
	ctx := c.Request.Context()
	var filter models.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	key := fmt.Sprintf("animes:page:%d:limit:%d", filter.Page, filter.Limit)
	v, err, _ := h.list.Do(key, func() (interface{}, error) {
		// Detached so one caller going away does not fail the others, but
		// still bounded by the leader's deadline.
		qctx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			qctx, cancel = context.WithDeadline(qctx, deadline)
			defer cancel()
		}
		animes, err := h.store.List(qctx, filter.Limit, filter.Offset())
		if err != nil {
			return nil, err
		}
		return models.ToResponses(animes), nil
	})
	if err != nil {
		logger.Error(ctx, "ListAnimes repository failed", "error", err)
		response.Error(c, err)
		return
	}
	animes := v.([]models.AnimeResponse)
	c.JSON(http.StatusOK, models.AnimeListResponse{
		Status:  response.StatusSuccess,
		Results: len(animes),
		Animes:  animes,
	})
}

// CreateAnime inserts a record and returns it as stored.
func (h *Handler) CreateAnime(c *gin.Context) {
	ctx := c.Request.Context()
	var body models.CreateAnimeInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	id := uuid.New().String()
	if err := h.store.Create(ctx, id, *body.Title, nullString(body.Description)); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			response.Fail(c, http.StatusBadRequest, "Anime with that title already exists")
			return
		}
		response.Error(c, err)
		return
	}

	anime, err := h.store.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "CreateAnime read-back failed", "error", err, "id", id)
		response.Error(c, err)
		return
	}
	out := anime.ToResponse()
	h.publish(ctx, models.ActionCreated, out)
	response.OK(c, gin.H{"anime": out})
}

// GetAnime returns a single record, cache first.
func (h *Handler) GetAnime(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := animeID(c)
	if !ok {
		return
	}
	cached, version, hit := h.cache.Get(ctx, id)
	if hit {
		response.OK(c, gin.H{"anime": cached})
		return
	}

	anime, err := h.store.GetByID(ctx, id)
	if err != nil {
		h.lookupFailed(c, id, err)
		return
	}
	out := anime.ToResponse()
	h.cache.Fill(ctx, out, version)
	response.OK(c, gin.H{"anime": out})
}

// UpdateAnime applies a partial update. Fields missing from the body keep
// their stored value; updated_at is always refreshed.
func (h *Handler) UpdateAnime(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := animeID(c)
	if !ok {
		return
	}
	var body models.UpdateAnimeInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	existing, err := h.store.GetByID(ctx, id)
	if err != nil {
		h.lookupFailed(c, id, err)
		return
	}
	title := existing.Title
	if body.Title != nil {
		title = *body.Title
	}
	description := existing.Description
	if body.Description != nil {
		description = nullString(body.Description)
	}

	if err := h.store.Update(ctx, id, title, description); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, notFoundMessage(id))
		case errors.Is(err, repository.ErrDuplicateTitle):
			response.Fail(c, http.StatusBadRequest, "Anime with that title already exists")
		default:
			response.Error(c, err)
		}
		return
	}
	h.cache.Invalidate(ctx, id)

	updated, err := h.store.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "UpdateAnime read-back failed", "error", err, "id", id)
		response.Error(c, err)
		return
	}
	out := updated.ToResponse()
	h.publish(ctx, models.ActionUpdated, out)
	response.OK(c, gin.H{"anime": out})
}

// DeleteAnime hard-deletes a record and returns 204.
func (h *Handler) DeleteAnime(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := animeID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, notFoundMessage(id))
			return
		}
		response.Error(c, err)
		return
	}
	h.cache.Invalidate(ctx, id)
	h.publish(ctx, models.ActionDeleted, models.AnimeResponse{ID: id})
	response.NoContent(c)
}

func (h *Handler) lookupFailed(c *gin.Context, id string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, notFoundMessage(id))
		return
	}
	response.Error(c, err)
}

// publish never fails the request; the write has already happened.
func (h *Handler) publish(ctx context.Context, action string, a models.AnimeResponse) {
	if err := h.events.Publish(ctx, models.NewAnimeEvent(action, a.ID, a.Title)); err != nil {
		logger.Warn(ctx, "Publish anime event failed", "error", err, "action", action, "id", a.ID)
	}
}

// animeID parses the :id path parameter as a UUID and writes a 400 on failure.
func animeID(c *gin.Context) (string, bool) {
	raw := c.Param("id")
	parsed, err := uuid.Parse(raw)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid anime ID: %s", raw))
		return "", false
	}
	return parsed.String(), true
}

func notFoundMessage(id string) string {
	return fmt.Sprintf("Anime with ID: %s not found", id)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
