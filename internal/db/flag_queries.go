package db

import (
	"context"
	"fmt"
	"strings"
)

// GetFlag reports the value of a named flag and whether the flag exists.
func (p *Pool) GetFlag(ctx context.Context, name string) (bool, bool, error) {
	const q = `SELECT value FROM news.flags WHERE name = $1`

	var value bool
	if err := p.QueryRow(ctx, q, strings.TrimSpace(name)).Scan(&value); err != nil {
		if IsNoRows(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("get flag %q: %w", name, err)
	}
	return value, true, nil
}

// CreateFlag inserts a flag unless it already exists.
func (p *Pool) CreateFlag(ctx context.Context, name string, value bool) error {
	const q = `
INSERT INTO news.flags (name, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (name) DO NOTHING
`
	if _, err := p.Exec(ctx, q, strings.TrimSpace(name), value); err != nil {
		return fmt.Errorf("create flag %q: %w", name, err)
	}
	return nil
}

// SetFlag writes a flag, creating it when absent.
func (p *Pool) SetFlag(ctx context.Context, name string, value bool) error {
	const q = `
INSERT INTO news.flags (name, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (name) DO UPDATE
SET value = EXCLUDED.value,
	updated_at = EXCLUDED.updated_at
`
	if _, err := p.Exec(ctx, q, strings.TrimSpace(name), value); err != nil {
		return fmt.Errorf("set flag %q: %w", name, err)
	}
	return nil
}
