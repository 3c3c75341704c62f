package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/schema"
)

// SchemaRepo mirrors the schema document into Postgres. It implements
// ecs.SchemaWriter.
type SchemaRepo struct {
	db      *DB
	timeout time.Duration
}

func NewSchemaRepo(db *DB) *SchemaRepo {
	return &SchemaRepo{db: db, timeout: 5 * time.Second}
}

// WritePoolSchema replaces the stored layout of one pool in a single
// transaction.
func (r *SchemaRepo) WritePoolSchema(s ecs.PoolSchema) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.Save(ctx, schema.FromPoolSchema(s))
}

func (r *SchemaRepo) Save(ctx context.Context, p schema.Pool) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("schema begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO pool_schemas (name, pool_id, capacity, fingerprint)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE
		 SET pool_id = EXCLUDED.pool_id, capacity = EXCLUDED.capacity,
		     fingerprint = EXCLUDED.fingerprint, updated_at = now()`,
		p.Name, int16(p.ID), p.Capacity, p.Fingerprint,
	); err != nil {
		return fmt.Errorf("schema upsert %s: %w", p.Name, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM pool_components WHERE pool_name = $1`, p.Name); err != nil {
		return fmt.Errorf("schema clear %s: %w", p.Name, err)
	}
	for _, c := range p.Components {
		if _, err := tx.Exec(ctx,
			`INSERT INTO pool_components (pool_name, local_index, name) VALUES ($1, $2, $3)`,
			p.Name, int16(c.Index), c.Name,
		); err != nil {
			return fmt.Errorf("schema component %s.%s: %w", p.Name, c.Name, err)
		}
	}
	return tx.Commit(ctx)
}

// Load reads every stored pool layout into a document that is not backed by
// a file.
func (r *SchemaRepo) Load(ctx context.Context) (*schema.Document, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT s.name, s.pool_id, s.capacity, s.fingerprint, c.local_index, c.name
		 FROM pool_schemas s
		 LEFT JOIN pool_components c ON c.pool_name = s.name
		 ORDER BY s.pool_id, c.local_index`)
	if err != nil {
		return nil, fmt.Errorf("query schema: %w", err)
	}
	defer rows.Close()

	doc := schema.New("")
	for rows.Next() {
		var (
			p     schema.Pool
			id    int16
			index *int16
			name  *string
		)
		if err := rows.Scan(&p.Name, &id, &p.Capacity, &p.Fingerprint, &index, &name); err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		p.ID = ecs.PoolID(id)
		n := len(doc.Pools)
		if n == 0 || doc.Pools[n-1].Name != p.Name {
			doc.Pools = append(doc.Pools, p)
			n++
		}
		if index != nil && name != nil {
			last := &doc.Pools[n-1]
			last.Components = append(last.Components, schema.Component{Name: *name, Index: ecs.LocalIndex(*index)})
		}
	}
	return doc, rows.Err()
}

var _ ecs.SchemaWriter = (*SchemaRepo)(nil)
