package undiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DiffKind identifies the structural edit performed by a DiffOperation.
type DiffKind int

// Diff kinds. KindUnknown is kept so that a batch with one unrecognized
// operation still parses; the operation fails when applied.
const (
	KindUnknown DiffKind = iota
	KindNew
	KindEdit
	KindDelete
	KindArray
)

// ParseDiffKind accepts the short codes N, E, D, A and the long names
// New, Edit, Delete, ArrayChange.
func ParseDiffKind(s string) DiffKind {
	switch s {
	case "N", "New":
		return KindNew
	case "E", "Edit":
		return KindEdit
	case "D", "Delete":
		return KindDelete
	case "A", "ArrayChange":
		return KindArray
	default:
		return KindUnknown
	}
}

// String returns the long name of the kind.
func (k DiffKind) String() string {
	switch k {
	case KindNew:
		return "New"
	case KindEdit:
		return "Edit"
	case KindDelete:
		return "Delete"
	case KindArray:
		return "ArrayChange"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (k DiffKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *DiffKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("diff kind: %w", err)
	}
	*k = ParseDiffKind(s)
	return nil
}

// PathElem is one step of a Path: a mapping key or an array index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a mapping key path element.
func Key(k string) PathElem {
	return PathElem{Key: k}
}

// Index returns an array index path element.
func Index(i int) PathElem {
	return PathElem{Index: i, IsIndex: true}
}

// String returns the key, or the index in decimal.
func (e PathElem) String() string {
	if e.IsIndex {
		return strconv.Itoa(e.Index)
	}
	return e.Key
}

// MarshalJSON implements json.Marshaler.
func (e PathElem) MarshalJSON() ([]byte, error) {
	if e.IsIndex {
		return json.Marshal(e.Index)
	}
	return json.Marshal(e.Key)
}

// UnmarshalJSON implements json.Unmarshaler. Strings become keys and
// non-negative integers become indices.
func (e *PathElem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = Key(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("path element %s: %w", data, err)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return fmt.Errorf("path element %s: not an array index", data)
	}
	*e = Index(int(f))
	return nil
}

// Path locates a value inside a Document.
type Path []PathElem

// ParsePath parses a dotted path such as "tracker.trackers.mike" or
// "items.0.name". Purely numeric segments become indices.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			p = append(p, Index(n))
			continue
		}
		p = append(p, Key(part))
	}
	return p
}

// String renders the path as "a.b[2].c".
func (p Path) String() string {
	var sb strings.Builder
	for i, e := range p {
		if e.IsIndex {
			fmt.Fprintf(&sb, "[%d]", e.Index)
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(e.Key)
	}
	return sb.String()
}

// DiffOperation is one structural edit instruction in deep-diff form.
type DiffOperation struct {
	Kind  DiffKind       `json:"kind"`
	Path  Path           `json:"path,omitempty"`
	LHS   any            `json:"lhs,omitempty"`   // Previous value (Edit, Delete)
	RHS   any            `json:"rhs,omitempty"`   // New value (New, Edit)
	Index int            `json:"index,omitempty"` // Array position (ArrayChange)
	Item  *DiffOperation `json:"item,omitempty"`  // Element edit (ArrayChange)
}

// DiffRecord is the batch of operations carried by one diff line.
type DiffRecord []DiffOperation
