// Package deepdiff applies deep-diff style change records to a state document.
package deepdiff

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var _ undiff.Applier = (*Applier)(nil)

var errNoItem = errors.New("array change without item")

// MaxGap is how far past the end of an array a New operation may write.
// The skipped slots are padded with nulls; larger gaps fail with
// ErrIndexOutOfRange instead of allocating the padding.
const MaxGap = 1024

// Applier applies diff records operation by operation. A failed operation
// leaves the document untouched and does not stop the rest of the record.
type Applier struct{}

// NewApplier creates a new Applier.
func NewApplier() *Applier {
	return &Applier{}
}

// Apply mutates doc with every operation of rec and returns doc. Failed
// operations are returned in record order; their Line is left zero for the
// caller to fill in.
func (a *Applier) Apply(doc undiff.Document, rec undiff.DiffRecord) (undiff.Document, []undiff.OperationError) {
	var errs []undiff.OperationError
	for i, op := range rec {
		if err := ApplyOperation(doc, op); err != nil {
			errs = append(errs, undiff.OperationError{
				Op:   i,
				Kind: op.Kind,
				Path: op.Path,
				Err:  err,
			})
		}
	}
	return doc, errs
}

// ApplyOperation applies a single operation to doc in place. On error doc
// is unchanged.
//
// New creates missing intermediate containers and overwrites an existing
// value. Edit and Delete require the full path to exist. ArrayChange
// requires the path to resolve to an array.
func ApplyOperation(doc undiff.Document, op undiff.DiffOperation) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", undiff.ErrTypeMismatch)
	}
	_, err := apply(map[string]any(doc), op)
	return err
}

func apply(node any, op undiff.DiffOperation) (any, error) {
	switch op.Kind {
	case undiff.KindNew, undiff.KindEdit, undiff.KindDelete, undiff.KindArray:
	default:
		return nil, undiff.ErrUnknownKind
	}
	if len(op.Path) == 0 {
		return nil, undiff.ErrEmptyPath
	}

	switch op.Kind {
	case undiff.KindNew:
		return create(node, op.Path, undiff.CloneValue(op.RHS), MaxGap)
	case undiff.KindEdit:
		return update(node, op.Path, func(any) (any, error) {
			return undiff.CloneValue(op.RHS), nil
		})
	case undiff.KindDelete:
		return remove(node, op.Path)
	default:
		if op.Item == nil {
			return nil, errNoItem
		}
		return update(node, op.Path, func(v any) (any, error) {
			arr, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: array change on %s", undiff.ErrTypeMismatch, typeName(v))
			}
			return applyItem(arr, op.Index, *op.Item)
		})
	}
}

// Set stores v at path like a New operation, without the MaxGap bound.
// It is meant for copying values whose indices come from an existing
// document. v is not cloned.
func Set(doc undiff.Document, path undiff.Path, v any) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", undiff.ErrTypeMismatch)
	}
	if len(path) == 0 {
		return undiff.ErrEmptyPath
	}
	_, err := create(map[string]any(doc), path, v, math.MaxInt)
	return err
}

// create sets v at path, building missing containers on the way. It
// returns the node, which differs from the input only for grown arrays.
func create(node any, path undiff.Path, v any, gap int) (any, error) {
	elem, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		key := mapKey(elem)
		if len(rest) == 0 {
			n[key] = v
			return n, nil
		}
		child := n[key]
		if child == nil {
			child = newContainer(rest[0])
		}
		child, err := create(child, rest, v, gap)
		if err != nil {
			return nil, err
		}
		n[key] = child
		return n, nil

	case []any:
		if !elem.IsIndex {
			return nil, fmt.Errorf("%w: key %q into array", undiff.ErrTypeMismatch, elem.Key)
		}
		if err := checkGap(n, elem.Index, gap); err != nil {
			return nil, err
		}
		if len(rest) == 0 {
			return setIndex(n, elem.Index, v), nil
		}
		var child any
		if elem.Index < len(n) {
			child = n[elem.Index]
		}
		if child == nil {
			child = newContainer(rest[0])
		}
		child, err := create(child, rest, v, gap)
		if err != nil {
			return nil, err
		}
		return setIndex(n, elem.Index, child), nil

	default:
		return nil, fmt.Errorf("%w: %s into %s", undiff.ErrTypeMismatch, elem, typeName(node))
	}
}

// update replaces the existing value at path with fn(value).
func update(node any, path undiff.Path, fn func(any) (any, error)) (any, error) {
	elem, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		key := mapKey(elem)
		child, ok := n[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", undiff.ErrPathNotFound, key)
		}
		v, err := descend(child, rest, fn)
		if err != nil {
			return nil, err
		}
		n[key] = v
		return n, nil

	case []any:
		if !elem.IsIndex {
			return nil, fmt.Errorf("%w: key %q into array", undiff.ErrTypeMismatch, elem.Key)
		}
		if elem.Index >= len(n) {
			return nil, fmt.Errorf("%w: %d of %d", undiff.ErrIndexOutOfRange, elem.Index, len(n))
		}
		v, err := descend(n[elem.Index], rest, fn)
		if err != nil {
			return nil, err
		}
		n[elem.Index] = v
		return n, nil

	default:
		return nil, fmt.Errorf("%w: %s into %s", undiff.ErrTypeMismatch, elem, typeName(node))
	}
}

func descend(child any, rest undiff.Path, fn func(any) (any, error)) (any, error) {
	if len(rest) == 0 {
		return fn(child)
	}
	return update(child, rest, fn)
}

// remove deletes the value at path. Array elements are spliced out.
func remove(node any, path undiff.Path) (any, error) {
	last := path[len(path)-1]
	if len(path) == 1 {
		return removeChild(node, last)
	}
	return update(node, path[:len(path)-1], func(parent any) (any, error) {
		return removeChild(parent, last)
	})
}

func removeChild(node any, elem undiff.PathElem) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		key := mapKey(elem)
		if _, ok := n[key]; !ok {
			return nil, fmt.Errorf("%w: %q", undiff.ErrPathNotFound, key)
		}
		delete(n, key)
		return n, nil
	case []any:
		if !elem.IsIndex {
			return nil, fmt.Errorf("%w: key %q into array", undiff.ErrTypeMismatch, elem.Key)
		}
		if elem.Index >= len(n) {
			return nil, fmt.Errorf("%w: %d of %d", undiff.ErrIndexOutOfRange, elem.Index, len(n))
		}
		return slices.Delete(n, elem.Index, elem.Index+1), nil
	default:
		return nil, fmt.Errorf("%w: %s into %s", undiff.ErrTypeMismatch, elem, typeName(node))
	}
}

// applyItem applies an array element change. An item with a path edits
// inside the element at index; otherwise the item acts on the element itself.
func applyItem(arr []any, index int, item undiff.DiffOperation) ([]any, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", undiff.ErrIndexOutOfRange, index)
	}

	if len(item.Path) > 0 {
		if index >= len(arr) {
			return nil, fmt.Errorf("%w: %d of %d", undiff.ErrIndexOutOfRange, index, len(arr))
		}
		v, err := apply(arr[index], item)
		if err != nil {
			return nil, err
		}
		arr[index] = v
		return arr, nil
	}

	if item.Kind == undiff.KindNew {
		if err := checkGap(arr, index, MaxGap); err != nil {
			return nil, err
		}
		return setIndex(arr, index, undiff.CloneValue(item.RHS)), nil
	}
	if index >= len(arr) {
		return nil, fmt.Errorf("%w: %d of %d", undiff.ErrIndexOutOfRange, index, len(arr))
	}

	switch item.Kind {
	case undiff.KindEdit:
		arr[index] = undiff.CloneValue(item.RHS)
		return arr, nil
	case undiff.KindDelete:
		return slices.Delete(arr, index, index+1), nil
	case undiff.KindArray:
		inner, ok := arr[index].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: array change on %s", undiff.ErrTypeMismatch, typeName(arr[index]))
		}
		if item.Item == nil {
			return nil, errNoItem
		}
		v, err := applyItem(inner, item.Index, *item.Item)
		if err != nil {
			return nil, err
		}
		arr[index] = v
		return arr, nil
	default:
		return nil, undiff.ErrUnknownKind
	}
}

func checkGap(s []any, i, gap int) error {
	if i-len(s) > gap {
		return fmt.Errorf("%w: %d of %d exceeds gap of %d", undiff.ErrIndexOutOfRange, i, len(s), gap)
	}
	return nil
}

// setIndex stores v at i, padding with nulls when i is past the end.
// Callers bound i with checkGap.
func setIndex(s []any, i int, v any) []any {
	if i < len(s) {
		s[i] = v
		return s
	}
	for len(s) < i {
		s = append(s, nil)
	}
	return append(s, v)
}

func newContainer(next undiff.PathElem) any {
	if next.IsIndex {
		return []any{}
	}
	return map[string]any{}
}

// mapKey returns the mapping key for elem. Indices address mappings by
// their decimal form, as JavaScript property access does.
func mapKey(elem undiff.PathElem) string {
	if elem.IsIndex {
		return strconv.Itoa(elem.Index)
	}
	return elem.Key
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Lookup returns the value at path. The empty path resolves to doc itself.
func Lookup(doc undiff.Document, path undiff.Path) (any, bool) {
	var node any = map[string]any(doc)
	for _, elem := range path {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[mapKey(elem)]
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			if !elem.IsIndex || elem.Index >= len(n) {
				return nil, false
			}
			node = n[elem.Index]
		default:
			return nil, false
		}
	}
	return node, true
}
