// Package db provides the embedded database schema and seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables. Every
// statement is idempotent so it can run on each start.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedDiscounts is the sample discount catalog loaded by seed-db.
//
//go:embed seed/discounts.json
var SeedDiscounts []byte
