package database

import (
	"embed"
	"fmt"
)

//go:embed schemas/*.sql
var schemaFiles embed.FS

var schemaNames = map[string]string{
	"cache":   "schemas/cache_schema.sql",
	"contest": "schemas/contest_schema.sql",
}

// Schema returns the DDL for a named database
func Schema(name string) (string, error) {
	file, ok := schemaNames[name]
	if !ok {
		return "", fmt.Errorf("no schema registered for database %q", name)
	}
	content, err := schemaFiles.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", file, err)
	}
	return string(content), nil
}
