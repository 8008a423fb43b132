package model

import "time"

// Session identifies one curation working session. All mutable
// pipeline state (selection, filters, resolution edits) is keyed by
// session ID so concurrent sessions never share state.
type Session struct {
	ID         string
	SourceFile string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
