// Package redact provides composable state and action filters.
package redact

import (
	"strings"

	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/config"
	"github.com/fwojciec/undiff/deepdiff"
)

// Mask replaces the values of masked keys.
const Mask = "[REDACTED]"

// KeepPaths narrows each snapshot to the listed paths, preserving their
// nesting. Paths missing from a snapshot are omitted. Array elements kept
// by index keep their position; earlier slots are null.
func KeepPaths(paths ...undiff.Path) undiff.StateFilter {
	return func(doc undiff.Document) (undiff.Document, bool) {
		out := undiff.Document{}
		for _, p := range paths {
			if len(p) == 0 {
				return doc, true
			}
			v, ok := deepdiff.Lookup(doc, p)
			if !ok {
				continue
			}
			// Overlapping paths cannot conflict: both sides come from doc.
			_ = deepdiff.Set(out, p, undiff.CloneValue(v))
		}
		return out, true
	}
}

// MaskKeys replaces the value of every mapping entry whose key is listed,
// at any depth, with Mask.
func MaskKeys(keys ...string) undiff.StateFilter {
	set := keySet(keys)
	return func(doc undiff.Document) (undiff.Document, bool) {
		maskMap(doc, set)
		return doc, true
	}
}

// MaskActionKeys is MaskKeys for action payloads. The action type is
// never masked.
func MaskActionKeys(keys ...string) undiff.ActionFilter {
	set := keySet(keys)
	return func(action undiff.ActionRecord) (undiff.ActionRecord, bool) {
		maskMap(action.Payload, set)
		if _, ok := action.Payload["type"]; ok {
			action.Payload["type"] = action.Type
		}
		return action, true
	}
}

// DropStates redacts every state snapshot.
func DropStates() undiff.StateFilter {
	return func(undiff.Document) (undiff.Document, bool) {
		return nil, false
	}
}

// DropActionPrefix drops actions whose type starts with any prefix.
func DropActionPrefix(prefixes ...string) undiff.ActionFilter {
	return func(action undiff.ActionRecord) (undiff.ActionRecord, bool) {
		for _, p := range prefixes {
			if strings.HasPrefix(action.Type, p) {
				return action, false
			}
		}
		return action, true
	}
}

// ChainStates runs filters in order. The first drop wins.
func ChainStates(filters ...undiff.StateFilter) undiff.StateFilter {
	return func(doc undiff.Document) (undiff.Document, bool) {
		for _, f := range filters {
			var keep bool
			if doc, keep = f(doc); !keep {
				return nil, false
			}
		}
		return doc, true
	}
}

// ChainActions runs filters in order. The first drop wins.
func ChainActions(filters ...undiff.ActionFilter) undiff.ActionFilter {
	return func(action undiff.ActionRecord) (undiff.ActionRecord, bool) {
		for _, f := range filters {
			var keep bool
			if action, keep = f(action); !keep {
				return action, false
			}
		}
		return action, true
	}
}

// FromConfig builds the filter pair described by f. Unset settings
// contribute identity filters.
func FromConfig(f config.Filters) (undiff.StateFilter, undiff.ActionFilter) {
	var states []undiff.StateFilter
	var actions []undiff.ActionFilter

	if f.DropStates {
		states = append(states, DropStates())
	}
	if len(f.Keep) > 0 {
		paths := make([]undiff.Path, len(f.Keep))
		for i, k := range f.Keep {
			paths[i] = undiff.ParsePath(k)
		}
		states = append(states, KeepPaths(paths...))
	}
	if len(f.DropActionPrefixes) > 0 {
		actions = append(actions, DropActionPrefix(f.DropActionPrefixes...))
	}
	if len(f.Mask) > 0 {
		states = append(states, MaskKeys(f.Mask...))
		actions = append(actions, MaskActionKeys(f.Mask...))
	}

	return ChainStates(states...), ChainActions(actions...)
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func maskMap(m map[string]any, keys map[string]struct{}) {
	for k, v := range m {
		if _, ok := keys[k]; ok {
			m[k] = Mask
			continue
		}
		maskValue(v, keys)
	}
}

func maskValue(v any, keys map[string]struct{}) {
	switch v := v.(type) {
	case map[string]any:
		maskMap(v, keys)
	case []any:
		for _, e := range v {
			maskValue(e, keys)
		}
	}
}
