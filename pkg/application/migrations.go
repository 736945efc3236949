package application

import (
	"database/sql"

	"github.com/go-faster/errors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies every registered schema against the database using
// goose. Each module embeds its migrations under a "schema" directory.
func (m *MigrationRegistry) RunMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.Wrap(err, "open migration connection")
	}
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	for _, src := range m.schemas {
		if err := applySchema(db, src); err != nil {
			return err
		}
	}
	return nil
}

func applySchema(db *sql.DB, src schemaSource) error {
	goose.SetBaseFS(src.fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.Up(db, src.dir); err != nil {
		return errors.Wrap(err, "apply schema migrations")
	}
	return nil
}
