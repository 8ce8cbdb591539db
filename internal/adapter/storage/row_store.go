// internal/adapter/storage/row_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v4/pgxpool"

	"placemap/internal/domain/place"
)

// identifier restricts table references to plain SQL identifiers, since
// table names cannot be bound as query parameters.
var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// RowStore is a place.RowSource backed by Postgres, for deployments that
// mirror the upstream base into a database. Each mirrored table holds
// one row per record: a text id and the raw field mapping as jsonb.
type RowStore struct {
	db *pgxpool.Pool
}

// NewRowStore creates a new Postgres row store
func NewRowStore(db *pgxpool.Pool) *RowStore {
	return &RowStore{
		db: db,
	}
}

// FetchAllRows returns every row of the referenced mirror table
func (s *RowStore) FetchAllRows(ctx context.Context, tableRef string) ([]place.Row, error) {
	if !identifier.MatchString(tableRef) {
		return nil, fmt.Errorf("invalid table reference %q", tableRef)
	}

	query := fmt.Sprintf(`SELECT id, fields FROM %s`, tableRef)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var out []place.Row
	for rows.Next() {
		var id string
		var raw []byte

		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		fields := map[string]interface{}{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("error unmarshaling fields for row %s: %w", id, err)
			}
		}

		out = append(out, place.Row{ID: id, Fields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}
