// Package migrations embeds the journal schema migrations into the binary.
//
// Importing this package registers the files with the database package, so
// the loader runs them without the SQL present on the filesystem.
package migrations

import (
	"embed"

	"github.com/nerrad567/influxwire/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
