package seed

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/nebula-roi/internal/db"
	"github.com/Simplici0/nebula-roi/internal/migrations"
)

func newSeedTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database.DB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	database := newSeedTestDB(t)

	cfg := Config{
		AdminEmail:    "admin@nebulaone.com",
		AdminPassword: "12345",
	}

	for i := 0; i < 5; i++ {
		stats, err := Run(database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		want := 0
		if i == 0 {
			want = 1
		}
		if stats.Inserts != want {
			t.Fatalf("expected %d inserts in iteration %d, got %d", want, i, stats.Inserts)
		}
	}

	var count int
	if err := database.Get(&count, `SELECT COUNT(*) FROM users WHERE email = ?`, cfg.AdminEmail); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 admin user, got %d", count)
	}

	var hash string
	if err := database.Get(&hash, `SELECT password_hash FROM users WHERE email = ?`, cfg.AdminEmail); err != nil {
		t.Fatalf("query admin hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("12345")); err != nil {
		t.Fatalf("expected admin hash to match password: %v", err)
	}
}

func TestRunSkipsAdminWithoutCredentials(t *testing.T) {
	database := newSeedTestDB(t)

	stats, err := Run(database, Config{AdminEmail: "admin@nebulaone.com"})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 0 {
		t.Fatalf("expected no inserts, got %d", stats.Inserts)
	}
}
