package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lewtec/cocotool/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// documentTable is a collection of JSON documents keyed by id
type documentTable struct {
	db   querier
	name string
}

func (t documentTable) insert(ctx context.Context, id domain.ID, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("while encoding %s %q: %w", t.name, id, err)
	}
	_, err = t.db.ExecContext(ctx, "INSERT INTO "+t.name+" (id, doc) VALUES (?, ?)", string(id), string(data))
	return translateError(err)
}

// get decodes the document with the given id into doc, reporting whether it exists
func (t documentTable) get(ctx context.Context, id domain.ID, doc any) (bool, error) {
	var data string
	err := t.db.QueryRowContext(ctx, "SELECT doc FROM "+t.name+" WHERE id = ?", string(id)).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(data), doc); err != nil {
		return false, fmt.Errorf("while decoding %s %q: %w", t.name, id, err)
	}
	return true, nil
}

func (t documentTable) ids(ctx context.Context) ([]domain.ID, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT id FROM "+t.name+" ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, domain.ID(id))
	}
	return result, rows.Err()
}

func (t documentTable) count(ctx context.Context) (int64, error) {
	var n int64
	err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n)
	return n, err
}

func (t documentTable) deleteAll(ctx context.Context) error {
	_, err := t.db.ExecContext(ctx, "DELETE FROM "+t.name)
	return err
}

// listDocuments runs query, which must select a single doc column, and decodes every row
func listDocuments[T any](ctx context.Context, db querier, query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		item := new(T)
		if err := json.Unmarshal([]byte(data), item); err != nil {
			return nil, fmt.Errorf("while decoding document: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// translateError maps unique constraint violations to domain.ErrDuplicateKey
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", domain.ErrDuplicateKey, err)
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(se.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("%w: %v", domain.ErrDuplicateKey, err)
			}
		}
	}
	return err
}
