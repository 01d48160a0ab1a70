package migrations

import (
	"database/sql"
	"embed"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// Run применяет все миграции, встроенные в бинарник.
func Run(db *sql.DB, log logrus.FieldLogger) error {
	goose.SetBaseFS(files)
	goose.SetLogger(log)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set dialect")
	}

	log.Infof("running migrations from %s", dir)
	if err := goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	return nil
}

// Status печатает состояние миграций.
func Status(db *sql.DB, log logrus.FieldLogger) error {
	goose.SetBaseFS(files)
	goose.SetLogger(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set dialect")
	}
	return errors.Wrap(goose.Status(db, dir), "failed to read migration status")
}
