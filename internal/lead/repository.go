package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Repository persists leads in SQLite.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// likeEscaper makes LIKE wildcards in a search match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Submit stores l.
func (r *Repository) Submit(ctx context.Context, l Lead) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO leads (email, mode, savings, created_at)
		VALUES (:email, :mode, :savings, :created_at)
	`, l)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// List returns stored leads, newest first. An empty query matches every lead;
// otherwise the email must contain it.
func (r *Repository) List(ctx context.Context, query string) ([]Lead, error) {
	leads := make([]Lead, 0)
	err := r.db.SelectContext(ctx, &leads, `
		SELECT id, email, mode, savings, created_at
		FROM leads
		WHERE (? = '' OR email LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
	`, query, "%"+likeEscaper.Replace(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	return leads, nil
}
