package builder

import (
	"github.com/hanpama/relaygraph/internal/globalid"
)

// Args holds decoded argument values, or the fields of a decoded input
// object. Nested input objects are Args as well; global IDs are globalid.ID.
type Args map[string]any

// Has reports whether name was supplied (possibly as an explicit null).
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a String or ID value.
func (a Args) String(name string) (string, bool) {
	s, ok := a[name].(string)
	return s, ok
}

func (a Args) Bool(name string) (bool, bool) {
	v, ok := a[name].(bool)
	return v, ok
}

func (a Args) Int(name string) (int, bool) {
	v, ok := a[name].(int)
	return v, ok
}

// GlobalID returns a decoded global ID.
func (a Args) GlobalID(name string) (globalid.ID, bool) {
	id, ok := a[name].(globalid.ID)
	return id, ok
}

// GlobalIDList returns a decoded list of global IDs. Null items are skipped.
func (a Args) GlobalIDList(name string) []globalid.ID {
	items, ok := a[name].([]any)
	if !ok {
		return nil
	}
	out := make([]globalid.ID, 0, len(items))
	for _, item := range items {
		if id, ok := item.(globalid.ID); ok {
			out = append(out, id)
		}
	}
	return out
}

// Input returns a nested input object, or nil when absent or null.
func (a Args) Input(name string) Args {
	switch v := a[name].(type) {
	case Args:
		return v
	case map[string]any:
		return Args(v)
	}
	return nil
}
