// Package gateway defines the toy collection contract the inventory screen
// reads from and writes to, and the JSON envelope it travels in.
package gateway

import (
	"context"
	"errors"

	"github.com/vbonduro/toyinv/internal/domain"
)

// ErrRejected is returned when the collection answers with success=false.
var ErrRejected = errors.New("gateway rejected request")

// Gateway lists, creates and updates toy records. List never returns
// soft-deleted records. Update merges only the fields that are set.
type Gateway interface {
	List(ctx context.Context) ([]*domain.Toy, error)
	Create(ctx context.Context, fields domain.ToyFields) (*domain.Toy, error)
	Update(ctx context.Context, id string, fields domain.ToyFields) (*domain.Toy, error)
}

// Envelope is the wire shape of every collection response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

func Fail(msg string) Envelope[any] {
	return Envelope[any]{Success: false, Error: msg}
}
