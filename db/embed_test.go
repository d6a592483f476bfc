package db

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_PolicyGuardsAreSchemaScoped(t *testing.T) {
	guards := regexp.MustCompile(`FROM pg_policies WHERE (.*) THEN`).FindAllStringSubmatch(Schema, -1)
	assert.Len(t, guards, 4)
	for _, g := range guards {
		assert.Contains(t, g[1], "schemaname = current_schema()")
	}
}
