package models

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ListFilter holds the pagination query of the list endpoint.
// No upper bound is placed on Limit.
type ListFilter struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=10" binding:"min=1"`
}

// Offset is the zero-based number of rows to skip. It saturates at
// math.MaxInt, which yields an empty page.
func (f ListFilter) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// CreateAnimeInput is the create body. Title must be present but may be empty.
type CreateAnimeInput struct {
	Title       *string `json:"title" binding:"required"`
	Description *string `json:"description"`
}

// UpdateAnimeInput is a partial update; nil fields keep their stored value.
type UpdateAnimeInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
