// Package migrations holds the audit log schema.
package migrations

import "embed"

// FS contains the numbered .up.sql and .down.sql files.
//
//go:embed *.sql
var FS embed.FS
