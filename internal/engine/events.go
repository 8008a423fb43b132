package engine

import (
	"context"
	"fmt"

	"github.com/feedtailor/feedtailor/internal/filter"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/selection"
)

// Event is one user interaction. Dispatch persists the state change it
// describes and then recomputes the whole pipeline, so the returned
// result always reflects exactly the stored state.
type Event interface {
	isEvent()
}

// SelectRecommended resets the selection to the recommended defaults.
type SelectRecommended struct{}

// SelectAll keeps every column.
type SelectAll struct{}

// SelectNone drops every column.
type SelectNone struct{}

// InvertSelection flips every column's keep flag.
type InvertSelection struct{}

// ToggleColumn flips one column's keep flag.
type ToggleColumn struct {
	Column string
}

// ApplyPickerEdits replaces the selection with a full re-listing.
type ApplyPickerEdits struct {
	Edits []selection.Edit
}

// SetFilter replaces the chosen values of one filterable column.
// Empty values clear the column's constraint.
type SetFilter struct {
	Column string
	Values []string
}

// ClearFilter removes one column's constraint.
type ClearFilter struct {
	Column string
}

// ClearAllFilters removes every constraint.
type ClearAllFilters struct{}

// AddResolutions records human resolution edits for unmapped colours.
type AddResolutions struct {
	Edits []model.ResolutionEdit
}

// RemoveResolution withdraws the edit for one colour value.
type RemoveResolution struct {
	Value string
}

func (SelectRecommended) isEvent() {}
func (SelectAll) isEvent()         {}
func (SelectNone) isEvent()        {}
func (InvertSelection) isEvent()   {}
func (ToggleColumn) isEvent()      {}
func (ApplyPickerEdits) isEvent()  {}
func (SetFilter) isEvent()         {}
func (ClearFilter) isEvent()       {}
func (ClearAllFilters) isEvent()   {}
func (AddResolutions) isEvent()    {}
func (RemoveResolution) isEvent()  {}

// Dispatch applies one event to the session's persisted state and
// returns the recomputed pipeline result. A rejected event leaves the
// stored state untouched.
func (e *Engine) Dispatch(ctx context.Context, sessionID string, event Event) (*Result, error) {
	var err error
	switch ev := event.(type) {
	case SelectRecommended, SelectAll, SelectNone, InvertSelection, ToggleColumn, ApplyPickerEdits:
		err = e.applySelectionEvent(ctx, sessionID, event)
	case SetFilter:
		err = e.applySetFilter(ctx, sessionID, ev)
	case ClearFilter:
		err = e.applyClearFilter(ctx, sessionID, ev.Column)
	case ClearAllFilters:
		err = e.store.SaveFilterSpec(ctx, sessionID, model.FilterSpec{})
	case AddResolutions:
		err = e.applyAddResolutions(ctx, sessionID, ev)
	case RemoveResolution:
		err = e.store.DeleteResolutionEdit(ctx, sessionID, ev.Value)
	default:
		return nil, fmt.Errorf("unknown event type %T", event)
	}
	if err != nil {
		return nil, err
	}

	if err := e.store.TouchSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.Recompute(ctx, sessionID)
}

func (e *Engine) applySelectionEvent(ctx context.Context, sessionID string, event Event) error {
	sel, err := e.loadSelection(ctx, sessionID)
	if err != nil {
		return err
	}

	switch ev := event.(type) {
	case SelectRecommended:
		sel.SelectRecommended()
	case SelectAll:
		sel.SelectAll()
	case SelectNone:
		sel.SelectNone()
	case InvertSelection:
		sel.Invert()
	case ToggleColumn:
		if err := sel.Set(ev.Column, !sel.IsKept(ev.Column)); err != nil {
			return err
		}
	case ApplyPickerEdits:
		if err := sel.ApplyEdits(ev.Edits); err != nil {
			return err
		}
	}

	return e.saveSelection(ctx, sessionID, sel)
}

func (e *Engine) applySetFilter(ctx context.Context, sessionID string, ev SetFilter) error {
	if len(ev.Values) == 0 {
		return e.applyClearFilter(ctx, sessionID, ev.Column)
	}

	sel, err := e.loadSelection(ctx, sessionID)
	if err != nil {
		return err
	}
	if !e.filterable(sel.Kept(), ev.Column) {
		return fmt.Errorf("column %q is not filterable", ev.Column)
	}

	spec, err := e.store.GetFilterSpec(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load filter choices: %w", err)
	}

	// Duplicate values would trip the store's uniqueness constraint.
	values := make([]string, 0, len(ev.Values))
	seen := make(map[string]struct{}, len(ev.Values))
	for _, v := range ev.Values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	spec[ev.Column] = values
	return e.store.SaveFilterSpec(ctx, sessionID, spec)
}

func (e *Engine) applyClearFilter(ctx context.Context, sessionID, column string) error {
	spec, err := e.store.GetFilterSpec(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load filter choices: %w", err)
	}
	delete(spec, column)
	return e.store.SaveFilterSpec(ctx, sessionID, spec)
}

func (e *Engine) applyAddResolutions(ctx context.Context, sessionID string, ev AddResolutions) error {
	for _, edit := range ev.Edits {
		if err := e.resolver.ValidateEdit(edit); err != nil {
			return err
		}
	}
	return e.store.SaveResolutionEdits(ctx, sessionID, ev.Edits)
}

func (e *Engine) filterable(kept []string, column string) bool {
	for _, opt := range filter.Options(e.raw, kept, e.config.FilterBounds) {
		if opt.Column == column {
			return true
		}
	}
	return false
}
