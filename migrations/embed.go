// Package migrations embeds the SQL schema migrations for the marketplace
// database. Files are applied in lexicographic order by database.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
