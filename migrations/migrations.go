// Package migrations carries the SQL schema migrations, embedded so
// the binary can apply them regardless of working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
