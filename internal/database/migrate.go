package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded schema file.
type Migration struct {
	Name     string
	SQL      string
	Checksum string
}

// MigrationResult reports what Migrate did with a file.
type MigrationResult struct {
	Name    string
	Applied bool // false when it had already been applied
}

// Migrations returns the embedded migration files in filename order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := migrationFS.ReadFile("migrations/" + e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{
			Name:     e.Name(),
			SQL:      string(b),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(b)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations.  A file whose checksum changed after being applied is
// reported as an error rather than re-run.
func Migrate(ctx context.Context, db *sql.DB) ([]MigrationResult, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   VARCHAR(191) NOT NULL PRIMARY KEY,
			checksum   CHAR(64)     NOT NULL,
			applied_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[string]string{}
	rows, err := db.QueryContext(ctx, "SELECT filename, checksum FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	for rows.Next() {
		var name, sum string
		if err := rows.Scan(&name, &sum); err != nil {
			rows.Close()
			return nil, err
		}
		applied[name] = sum
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	migs, err := Migrations()
	if err != nil {
		return nil, err
	}
	var results []MigrationResult
	for _, m := range migs {
		if sum, ok := applied[m.Name]; ok {
			if sum != m.Checksum {
				return results, fmt.Errorf("migration %s was modified after being applied", m.Name)
			}
			results = append(results, MigrationResult{Name: m.Name})
			continue
		}
		// DDL auto-commits in MySQL, so statements run one by one.
		for _, stmt := range SplitStatements(m.SQL) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return results, fmt.Errorf("%s: %w", m.Name, err)
			}
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations (filename, checksum) VALUES (?,?)",
			m.Name, m.Checksum); err != nil {
			return results, fmt.Errorf("record %s: %w", m.Name, err)
		}
		results = append(results, MigrationResult{Name: m.Name, Applied: true})
	}
	return results, nil
}

// SplitStatements splits a schema file on semicolons that end a line and
// drops "--" comment lines.
func SplitStatements(src string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			if stmt != "" {
				out = append(out, stmt)
			}
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
