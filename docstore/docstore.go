// Package docstore is the document-collection facade the club core talks to.
// Collections are slash paths ("users", "tournaments/{id}/signups") holding
// JSON documents addressed by string ids.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrInvalidPath    = errors.New("invalid collection path or document id")
	ErrInvalidFilter  = errors.New("invalid query filter")
	ErrInvalidUpdate  = errors.New("invalid field update")
	ErrNotADocument   = errors.New("value does not encode to a JSON object")
	ErrTxAlreadyEnded = errors.New("transaction already finished")
)

// Store is the minimal verb set of the document database.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, q Query) ([]*Document, error)
	Add(ctx context.Context, collection string, data any) (string, error)
	Set(ctx context.Context, collection, id string, data any) error
	Update(ctx context.Context, collection, id string, updates ...Update) error
	// Delete is idempotent: removing a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// RunInTx runs fn atomically. Either every write made through tx is
	// applied or none is. fn must not call the Store itself.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the write surface available inside RunInTx.
type Tx interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, q Query) ([]*Document, error)
	Set(ctx context.Context, collection, id string, data any) error
	Update(ctx context.Context, collection, id string, updates ...Update) error
	Delete(ctx context.Context, collection, id string) error
}

// Document is a decoded JSON object plus its id.
type Document struct {
	ID   string
	Data map[string]any
}

// DataTo decodes the document into dst through its JSON form.
func (d *Document) DataTo(dst any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Filter is a single field predicate. Only top-level fields are addressable.
type Filter struct {
	Field string
	Op    string
	Value any
}

const (
	OpEqual         = "=="
	OpNotEqual      = "!="
	OpLess          = "<"
	OpLessEqual     = "<="
	OpGreater       = ">"
	OpGreaterEqual  = ">="
	OpIn            = "in"
	OpArrayContains = "array-contains"
)

func Where(field, op string, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Query restricts, orders and pages a List call. Without OrderBy documents
// come back ordered by id.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Collection joins path segments: Collection("tournaments", id, "signups").
func Collection(segments ...string) string {
	return strings.Join(segments, "/")
}

func validatePath(collection string) error {
	if collection == "" {
		return ErrInvalidPath
	}
	parts := strings.Split(collection, "/")
	// collection paths alternate collection/doc/collection, so they have odd length
	if len(parts)%2 == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
		}
	}
	return nil
}

func validateID(id string) error {
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: id %q", ErrInvalidPath, id)
	}
	return nil
}

func validateQuery(q Query) error {
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("%w: empty field", ErrInvalidFilter)
		}
		switch f.Op {
		case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpArrayContains:
		case OpIn:
			v, err := normalize(f.Value)
			if err != nil {
				return err
			}
			if _, ok := v.([]any); !ok {
				return fmt.Errorf("%w: %q needs a list value", ErrInvalidFilter, OpIn)
			}
		default:
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", ErrInvalidFilter)
	}
	return nil
}
