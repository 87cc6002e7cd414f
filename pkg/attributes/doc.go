// Package attributes holds the normalized attribute model of a Blue Iris
// server.
//
// Attributes are grouped into families, one per originating command family
// ("status", "camlist", "login", ...). A family is always written as a
// whole: Update replaces every key of the family, so values from an older
// response can never mix with a newer one. Families that are not updated
// are left untouched.
//
// Values are plain JSON-shaped data (map[string]any, []any, string,
// float64, bool, nil and the scalar Go types the model package produces).
// They are deep-copied on the way in and on the way out, so neither the
// writer nor any reader can mutate stored state through a retained
// reference.
//
//	store := attributes.NewStore()
//	store.Update("status", map[string]any{"signal": 1, "profile": 2})
//
//	signal, _ := store.Get("status.signal")
//	snap := store.Snapshot() // map[family]map[key]value
package attributes
