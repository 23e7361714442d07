// Package migrations embeds the goose SQL migrations for the direct-Postgres
// row store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
