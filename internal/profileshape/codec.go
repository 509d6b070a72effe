package profileshape

import (
	"encoding/json"

	"talkseed/internal/domain"
)

// Expand inflates a packed profile into the catalog-complete UI form. Every
// catalog option appears, defaulted to unselected with empty free text;
// packed entries naming topics or options outside the current catalog are
// dropped. A nil packed profile expands to the empty UI profile.
func Expand(packed domain.PackedProfile, catalog Catalog) domain.UIProfile {
	ui := make(domain.UIProfile, len(catalog))
	for topicID, options := range catalog {
		topic := make(map[string]domain.UIOption, len(options))
		for _, opt := range options {
			topic[opt] = domain.UIOption{}
		}
		ui[topicID] = topic
	}

	for topicID, items := range packed {
		topic, ok := ui[topicID]
		if !ok {
			continue
		}
		for _, item := range items {
			if _, ok := topic[item.Name]; ok {
				topic[item.Name] = domain.UIOption{Selected: true, FreeText: item.Text}
			}
		}
	}

	return ui
}

// Pack projects the UI form down to options that are both selected and
// recognized by the catalog. Topics with no qualifying entries are omitted
// entirely so the persisted payload stays minimal.
func Pack(ui domain.UIProfile, catalog Catalog) domain.PackedProfile {
	packed := make(domain.PackedProfile)
	for topicID, options := range catalog {
		state, ok := ui[topicID]
		if !ok {
			continue
		}
		var items []domain.PackedItem
		for _, opt := range options {
			if v, ok := state[opt]; ok && v.Selected {
				items = append(items, domain.PackedItem{Name: opt, Text: v.FreeText})
			}
		}
		if len(items) > 0 {
			packed[topicID] = items
		}
	}
	return packed
}

// Normalize round-trips a packed profile through the UI form, keeping only
// what the current catalog recognizes. Pack∘Expand is idempotent for
// recognized entries; unrecognized ones are lost, which is the accepted
// behavior for catalog shrinkage.
func Normalize(packed domain.PackedProfile, catalog Catalog) domain.PackedProfile {
	return Pack(Expand(packed, catalog), catalog)
}

// DecodePacked parses stored JSON into a packed profile. Reads tolerate
// stale or loosely-shaped blobs: topics whose value is not a sequence of
// {name, text} entries are skipped, and a blob that is not an object at all
// yields the empty profile. Writes go through strict decoding at the API
// boundary instead.
func DecodePacked(data []byte) domain.PackedProfile {
	packed := make(domain.PackedProfile)
	if len(data) == 0 {
		return packed
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return packed
	}
	for topicID, val := range raw {
		var items []domain.PackedItem
		if err := json.Unmarshal(val, &items); err != nil {
			continue
		}
		if len(items) > 0 {
			packed[topicID] = items
		}
	}
	return packed
}
