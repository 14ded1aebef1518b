package models

import (
	"database/sql"
	"time"
)

// Anime is a row of the animes table. Description and the timestamps are
// nullable at the storage layer.
type Anime struct {
	ID          string
	Title       string
	Description sql.NullString
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

// AnimeResponse is the wire shape of an anime record.
type AnimeResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToResponse maps a stored row to its wire shape. NULL description becomes
// the empty string and NULL timestamps become the zero time.
func (a Anime) ToResponse() AnimeResponse {
	return AnimeResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description.String,
		CreatedAt:   a.CreatedAt.Time,
		UpdatedAt:   a.UpdatedAt.Time,
	}
}

// ToResponses maps rows in order. The result is never nil.
func ToResponses(animes []Anime) []AnimeResponse {
	out := make([]AnimeResponse, 0, len(animes))
	for _, a := range animes {
		out = append(out, a.ToResponse())
	}
	return out
}

// AnimeListResponse is the body of a successful list request.
type AnimeListResponse struct {
	Status  string          `json:"status"`
	Results int             `json:"results"`
	Animes  []AnimeResponse `json:"animes"`
}
