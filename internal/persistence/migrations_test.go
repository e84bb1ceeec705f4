package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestMigrationsAreOrderedAndIdempotent(t *testing.T) {
	names, err := Migrations()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) == 0 || names[0] != "0001_ticket_documents.sql" {
		t.Fatalf("unexpected migrations %v", names)
	}

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := RunSQLMigrations(ctx, db); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO ticket_documents (id, body, updated_at) VALUES ('a', '{}', 1)`); err != nil {
		t.Fatalf("table missing: %v", err)
	}
}
