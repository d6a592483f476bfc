// Package db provides the embedded database schema and seed catalog.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables, indexes and
// row-level security policies. It is safe to execute repeatedly.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedCatalog is the JSON document holding the default prompts, lighting
// schemes and backgrounds.
//
//go:embed seed/catalog.json
var SeedCatalog []byte
