// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/feedtailor/feedtailor/internal/model"
)

// SessionStore defines the contract for the session persistence layer.
// Every method takes the session ID so independent sessions never see
// each other's state.
type SessionStore interface {
	// Session lifecycle
	CreateSession(ctx context.Context, sourceFile string) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	TouchSession(ctx context.Context, id string) error

	// Column selection
	SaveSelection(ctx context.Context, sessionID string, entries []model.SelectionEntry) error
	GetSelection(ctx context.Context, sessionID string) ([]model.SelectionEntry, error)

	// Filter choices
	SaveFilterSpec(ctx context.Context, sessionID string, spec model.FilterSpec) error
	GetFilterSpec(ctx context.Context, sessionID string) (model.FilterSpec, error)

	// Resolution edits
	SaveResolutionEdits(ctx context.Context, sessionID string, edits []model.ResolutionEdit) error
	GetResolutionEdits(ctx context.Context, sessionID string) ([]model.ResolutionEdit, error)
	DeleteResolutionEdit(ctx context.Context, sessionID, value string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Prompter walks a human through the unmapped colours and collects
// resolution edits.
type Prompter interface {
	ResolveColours(ctx context.Context, unmapped []model.UnmappedColour, vocabulary []string) ([]model.ResolutionEdit, error)
}

// ResolutionStats shows the results of a resolution run.
type ResolutionStats struct {
	Presented int
	Resolved  int
	Skipped   int
	Duration  time.Duration
}
