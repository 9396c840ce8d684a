package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// PostgresStore keeps every collection in the single `documents` table
// (see db/migrations). Transactions lock the rows they read.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	return pgGet(ctx, s.db, collection, id, false)
}

func (s *PostgresStore) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	return pgList(ctx, s.db, collection, q)
}

func (s *PostgresStore) Add(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data any) error {
	if err := validatePath(collection); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	return pgSet(ctx, s.db, collection, id, data)
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, updates ...Update) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Update(ctx, collection, id, updates...)
	})
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if err := validatePath(collection); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	return pgDelete(ctx, s.db, collection, id)
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tx := &postgresTx{tx: sqlTx}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		if commitErr := sqlTx.Commit(); commitErr != nil {
			err = fmt.Errorf("commit transaction: %w", commitErr)
		}
	}()
	return fn(ctx, tx)
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	return pgGet(ctx, t.tx, collection, id, true)
}

func (t *postgresTx) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	return pgList(ctx, t.tx, collection, q)
}

func (t *postgresTx) Set(ctx context.Context, collection, id string, data any) error {
	if err := validatePath(collection); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	return pgSet(ctx, t.tx, collection, id, data)
}

func (t *postgresTx) Update(ctx context.Context, collection, id string, updates ...Update) error {
	doc, err := t.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := applyUpdates(doc.Data, updates); err != nil {
		return err
	}
	return pgSet(ctx, t.tx, collection, id, doc.Data)
}

func (t *postgresTx) Delete(ctx context.Context, collection, id string) error {
	if err := validatePath(collection); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	return pgDelete(ctx, t.tx, collection, id)
}

func pgGet(ctx context.Context, exec SQLExecutor, collection, id string, forUpdate bool) (*Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var raw []byte
	err := exec.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return decodeRow(id, raw)
}

func pgSet(ctx context.Context, exec SQLExecutor, collection, id string, data any) error {
	m, err := toMap(data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()`
	if _, err := exec.ExecContext(ctx, query, collection, id, string(raw)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "22P02" { // invalid_text_representation
			return fmt.Errorf("%w: %s", ErrNotADocument, pqErr.Message)
		}
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

func pgDelete(ctx context.Context, exec SQLExecutor, collection, id string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func pgList(ctx context.Context, exec SQLExecutor, collection string, q Query) ([]*Document, error) {
	query, args, err := buildListQuery(collection, q)
	if err != nil {
		return nil, err
	}
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]*Document, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document in %s: %w", collection, err)
		}
		doc, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// buildListQuery translates a Query into SQL over the JSONB data column.
// Range operators compare numerically for numeric operands and bytewise
// (COLLATE "C") for strings.
func buildListQuery(collection string, q Query) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []interface{}{collection}
	argID := 2

	next := func(v interface{}) string {
		args = append(args, v)
		p := fmt.Sprintf("$%d", argID)
		argID++
		return p
	}

	for _, f := range q.Filters {
		operand, err := normalize(f.Value)
		if err != nil {
			return "", nil, err
		}
		field := next(f.Field) + "::text"
		switch f.Op {
		case OpEqual, OpNotEqual, OpIn, OpArrayContains:
			var encoded interface{} = operand
			if f.Op == OpArrayContains {
				encoded = []any{operand}
			}
			raw, err := json.Marshal(encoded)
			if err != nil {
				return "", nil, err
			}
			value := next(string(raw))
			switch f.Op {
			case OpEqual:
				fmt.Fprintf(&sb, " AND data->%s = %s::jsonb", field, value)
			case OpNotEqual:
				fmt.Fprintf(&sb, " AND (data->%s) IS DISTINCT FROM %s::jsonb", field, value)
			case OpIn:
				fmt.Fprintf(&sb, " AND data->%s IN (SELECT jsonb_array_elements(%s::jsonb))", field, value)
			case OpArrayContains:
				fmt.Fprintf(&sb, " AND data->%s @> %s::jsonb", field, value)
			}
		case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
			switch v := operand.(type) {
			case float64:
				fmt.Fprintf(&sb, " AND jsonb_typeof(data->%s) = 'number' AND (data->>%s)::numeric %s %s",
					field, field, f.Op, next(v))
			case string:
				fmt.Fprintf(&sb, " AND jsonb_typeof(data->%s) = 'string' AND (data->>%s) COLLATE \"C\" %s %s",
					field, field, f.Op, next(v))
			default:
				return "", nil, fmt.Errorf("%w: %q needs a number or string operand", ErrInvalidFilter, f.Op)
			}
		default:
			return "", nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
		}
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY data->(%s::text) %s, id ASC", next(q.OrderBy), dir)
	} else {
		sb.WriteString(" ORDER BY id ASC")
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %s", next(q.Limit))
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %s", next(q.Offset))
	}
	return sb.String(), args, nil
}

func decodeRow(id string, raw []byte) (*Document, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode stored document %s: %w", id, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return &Document{ID: id, Data: data}, nil
}
