// Package migrations embeds the schema of the client's local state file.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
