package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

type UpdateOp int

const (
	opSetField UpdateOp = iota
	opDeleteField
	opArrayUnion
	opArrayRemove
)

// Update is one field mutation applied by Store.Update / Tx.Update.
type Update struct {
	Field  string
	Op     UpdateOp
	Value  any
	Values []any
}

func SetField(field string, value any) Update {
	return Update{Field: field, Op: opSetField, Value: value}
}

func DeleteField(field string) Update {
	return Update{Field: field, Op: opDeleteField}
}

// ArrayUnion adds each value not already present, keeping set semantics.
func ArrayUnion(field string, values ...any) Update {
	return Update{Field: field, Op: opArrayUnion, Values: values}
}

// ArrayRemove removes every occurrence of each value.
func ArrayRemove(field string, values ...any) Update {
	return Update{Field: field, Op: opArrayRemove, Values: values}
}

// normalize pushes a Go value through JSON so that stored data and query
// operands share one representation (float64, string, bool, []any, map).
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func toMap(data any) (map[string]any, error) {
	v, err := normalize(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotADocument
	}
	return m, nil
}

func copyMap(m map[string]any) map[string]any {
	out, err := toMap(m)
	if err != nil {
		// m came out of toMap already, so it always re-encodes
		panic(err)
	}
	return out
}

func applyUpdates(data map[string]any, updates []Update) error {
	for _, u := range updates {
		if u.Field == "" {
			return fmt.Errorf("%w: empty field", ErrInvalidUpdate)
		}
		switch u.Op {
		case opSetField:
			v, err := normalize(u.Value)
			if err != nil {
				return err
			}
			data[u.Field] = v
		case opDeleteField:
			delete(data, u.Field)
		case opArrayUnion, opArrayRemove:
			current, err := arrayField(data, u.Field)
			if err != nil {
				return err
			}
			for _, raw := range u.Values {
				v, err := normalize(raw)
				if err != nil {
					return err
				}
				if u.Op == opArrayUnion {
					if !containsValue(current, v) {
						current = append(current, v)
					}
					continue
				}
				kept := current[:0]
				for _, existing := range current {
					if !reflect.DeepEqual(existing, v) {
						kept = append(kept, existing)
					}
				}
				current = kept
			}
			data[u.Field] = current
		default:
			return fmt.Errorf("%w: unknown op %d", ErrInvalidUpdate, u.Op)
		}
	}
	return nil
}

func arrayField(data map[string]any, field string) ([]any, error) {
	raw, ok := data[field]
	if !ok || raw == nil {
		return []any{}, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not an array", ErrInvalidUpdate, field)
	}
	out := make([]any, len(arr))
	copy(out, arr)
	return out, nil
}

func containsValue(arr []any, v any) bool {
	for _, existing := range arr {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}

// compareValues orders two normalized scalars of the same kind.
func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func matchFilter(data map[string]any, f Filter) (bool, error) {
	operand, err := normalize(f.Value)
	if err != nil {
		return false, err
	}
	field, present := data[f.Field]

	switch f.Op {
	case OpEqual:
		return present && reflect.DeepEqual(field, operand), nil
	case OpNotEqual:
		return !present || !reflect.DeepEqual(field, operand), nil
	case OpIn:
		list, _ := operand.([]any)
		return present && containsValue(list, field), nil
	case OpArrayContains:
		arr, ok := field.([]any)
		return ok && containsValue(arr, operand), nil
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if !present {
			return false, nil
		}
		c, ok := compareValues(field, operand)
		if !ok {
			return false, nil
		}
		switch f.Op {
		case OpLess:
			return c < 0, nil
		case OpLessEqual:
			return c <= 0, nil
		case OpGreater:
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	}
	return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
}

// selectDocuments filters, orders and pages docs in place of a query planner.
func selectDocuments(docs []*Document, q Query) ([]*Document, error) {
	matched := make([]*Document, 0, len(docs))
	for _, d := range docs {
		ok := true
		for _, f := range q.Filters {
			m, err := matchFilter(d.Data, f)
			if err != nil {
				return nil, err
			}
			if !m {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, d)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if q.OrderBy != "" {
			c, ok := compareValues(matched[i].Data[q.OrderBy], matched[j].Data[q.OrderBy])
			if ok && c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return matched[i].ID < matched[j].ID
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []*Document{}, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}
