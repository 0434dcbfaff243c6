package storage

import (
	"context"
	"time"

	"query-desk/internal/domain"
)

// ArchivedQuery is the JSON document written for a deleted query.
type ArchivedQuery struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Archiver keeps a copy of a deleted query outside the relational store and returns where
// it was written.
type Archiver interface {
	Archive(ctx context.Context, msg domain.QueryMessage) (string, error)
}
