package domain

import (
	"context"
)

// Image is a campus image record. Payload is opaque encoded bytes (usually base64).
type Image struct {
	Name    string
	Payload string
}

type ImageRepository interface {
	// ReplaceAll drops every stored image and inserts imgs in order
	ReplaceAll(ctx context.Context, imgs []*Image) error

	// ListAll returns every stored image
	ListAll(ctx context.Context) ([]*Image, error)
}
