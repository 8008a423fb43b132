package components

// ToggleColumnMsg requests toggling one column in or out of the selection.
type ToggleColumnMsg struct {
	Column string
}

// QuickSelectAction names a whole-selection shortcut.
type QuickSelectAction int

const (
	QuickRecommended QuickSelectAction = iota
	QuickAll
	QuickNone
	QuickInvert
)

// QuickSelectMsg requests a whole-selection shortcut.
type QuickSelectMsg struct {
	Action QuickSelectAction
}

// ApplyFilterMsg requests replacing the allow-list for one column.
type ApplyFilterMsg struct {
	Column string
	Values []string
}

// ClearFilterMsg requests removing the filter on one column.
type ClearFilterMsg struct {
	Column string
}

// ClearAllFiltersMsg requests removing every active filter.
type ClearAllFiltersMsg struct{}

// ResolveColourMsg requests recording one colour resolution edit.
type ResolveColourMsg struct {
	Value   string
	Generic string
}

// UndoResolutionMsg requests removing the edit for one colour value.
type UndoResolutionMsg struct {
	Value string
}
