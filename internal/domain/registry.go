package domain

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrToolExists is returned by a ToolRegistry when the name is already taken.
var ErrToolExists = errors.New("tool already exists")

// ToolRecord is a tool as stored by the remote registry.
type ToolRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ToolRegistry is the remote capability set used for registration and verification.
// Name uniqueness is enforced by the implementation, not by callers.
type ToolRegistry interface {
	Create(ctx context.Context, desc ToolDescriptor) (*ToolRecord, error)
	List(ctx context.Context) ([]ToolRecord, error)
}
