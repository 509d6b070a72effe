// Package profileshape converts interest profiles between the dense packed
// form that is persisted and fed to the topic generator, and the
// catalog-complete UI form the presentation layer edits. The catalog can
// evolve independently of already-stored data: stored entries outside the
// current catalog are dropped on expansion, never an error.
package profileshape

// Catalog is the current set of topics and their selectable options,
// supplied by the presentation layer. Option order is the render order.
type Catalog map[string][]string

// DefaultCatalog mirrors the option set the mobile UI currently renders.
func DefaultCatalog() Catalog {
	return Catalog{
		"sports":  {"Tennis", "Soccer", "Basketball", "Baseball", "Swimming", "Running"},
		"music":   {"Pop", "Rock", "Hip-Hop", "Jazz", "Classical", "Anime Songs"},
		"hobbies": {"Gaming", "Reading", "Cooking", "Photography", "Travel", "Drawing"},
		"media":   {"Anime", "Movies", "Dramas", "YouTube", "Podcasts"},
		"food":    {"Ramen", "Sushi", "Sweets", "Coffee", "Spicy Food"},
	}
}
