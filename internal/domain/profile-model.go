package domain

// PackedItem is one selected option with its free-text note.
type PackedItem struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// PackedProfile is the dense persisted/transmitted form: topic id to the
// list of selected options. Topics with nothing selected are absent.
type PackedProfile map[string][]PackedItem

// UIOption is the per-option state in the catalog-complete UI form.
type UIOption struct {
	Selected bool   `json:"selected"`
	FreeText string `json:"freeText"`
}

// UIProfile is the fully-enumerated form the presentation layer edits:
// topic id to option label to state. Every catalog option is present.
type UIProfile map[string]map[string]UIOption
