// Package migrations embeds the SQL schema files so they can be applied at
// bootstrap and by the test infrastructure.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
