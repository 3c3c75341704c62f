package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/poolecs/internal/prefab"
)

var ErrPrefabNotFound = errors.New("prefab not found")

// PrefabRepo stores prefab documents as YAML text.
type PrefabRepo struct {
	db *DB
}

func NewPrefabRepo(db *DB) *PrefabRepo {
	return &PrefabRepo{db: db}
}

// SavePrefab upserts a prefab by name.
func (r *PrefabRepo) SavePrefab(ctx context.Context, p *prefab.Prefab) error {
	doc, err := p.Marshal()
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO prefabs (name, pool_name, fingerprint, document)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE
		 SET pool_name = EXCLUDED.pool_name, fingerprint = EXCLUDED.fingerprint,
		     document = EXCLUDED.document, saved_at = now()`,
		p.Name, p.Pool, p.Fingerprint, string(doc),
	)
	if err != nil {
		return fmt.Errorf("save prefab %s: %w", p.Name, err)
	}
	return nil
}

// LoadPrefab returns the stored prefab or ErrPrefabNotFound.
func (r *PrefabRepo) LoadPrefab(ctx context.Context, name string) (*prefab.Prefab, error) {
	var doc string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT document FROM prefabs WHERE name = $1`, name,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrPrefabNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load prefab %s: %w", name, err)
	}
	return prefab.Parse([]byte(doc))
}

// Names lists the stored prefabs in name order.
func (r *PrefabRepo) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT name FROM prefabs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list prefabs: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// LoadAll loads every stored prefab into lib.
func (r *PrefabRepo) LoadAll(ctx context.Context, lib *prefab.Library) error {
	names, err := r.Names(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		p, err := r.LoadPrefab(ctx, n)
		if err != nil {
			return err
		}
		lib.Add(p)
	}
	return nil
}
