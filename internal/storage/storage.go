package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("duplicate record")
	ErrDuplicatePermission = errors.New("permission with this resource and action already exists")
	ErrInvalidReference    = errors.New("referenced record does not exist")
	ErrBankAccountLinked   = errors.New("bank account is linked to existing account types")
	ErrAccountTypeLinked   = errors.New("account type is linked to existing accounts")
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Ping() error {
	return s.db.Ping()
}

// sqlxExecer is satisfied by both *sqlx.DB and *sqlx.Tx.
type sqlxExecer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// updateBuilder accumulates SET clauses for partial updates. Fields absent
// from the request body are never added, so they stay untouched in the row.
type updateBuilder struct {
	sets []string
	args []interface{}
}

func (b *updateBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

func (b *updateBuilder) query(table, id string) (string, []interface{}) {
	args := append(b.args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		table, strings.Join(b.sets, ", "), len(args))
	return q, args
}

func decodeStringArray(data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeStringListMap(data []byte) (map[string][]string, error) {
	if len(data) == 0 {
		return map[string][]string{}, nil
	}

	var out map[string][]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string][]string{}
	}
	return out, nil
}

func encodeJSON(value interface{}, empty string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
