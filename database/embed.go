package database

import "embed"

// MigrationsFS embeds the SQL migration files applied by RunMigrations.
//
//go:embed migrations
var MigrationsFS embed.FS
