package place

import "context"

// Row is one raw record from the upstream tabular store: a stable opaque
// id plus a free-form field mapping whose column names vary in casing and
// naming across deployments.
type Row struct {
	ID     string
	Fields map[string]interface{}
}

// RowSource is the read-only contract against the external tabular store.
// Implementations materialize the full table on every call; no pagination
// state leaks out.
type RowSource interface {
	// FetchAllRows returns every row of the referenced table
	FetchAllRows(ctx context.Context, tableRef string) ([]Row, error)
}
