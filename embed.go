package rozno

import "embed"

// MigrationsFS embeds SQL migrations so the binary can self-migrate on start.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
