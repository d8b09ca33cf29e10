package domain

import (
	"context"
)

// Classroom is a classroom record as loaded from the classroom payload.
// ImageRefs are names of Image records; order and duplicates are significant.
type Classroom struct {
	Name        string
	Description string
	ImageRefs   []string
}

// ResolvedClassroom is a Classroom whose image references were replaced by
// the payloads of the images they name. It is never persisted.
type ResolvedClassroom struct {
	Name        string
	Description string
	Images      []string
}

type ClassroomRepository interface {
	// ReplaceAll drops every stored classroom and inserts classrooms in order
	ReplaceAll(ctx context.Context, classrooms []*Classroom) error

	// ListAll returns every stored classroom in insertion order
	ListAll(ctx context.Context) ([]*Classroom, error)
}

// Transactor runs fn so that every repository write made with the ctx passed
// to fn commits or rolls back together.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger is a liveness probe for the underlying store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the connection the repositories share: it can group their writes
// into one transaction and answer a liveness probe.
type Store interface {
	Transactor
	Pinger
}
