package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The embedding column uses the pgvector extension's vector type, so the DDL
// must provision the extension before creating the table or bootstrap fails on
// a fresh database.
func TestSchemaProvisionsVectorExtensionFirst(t *testing.T) {
	extIdx := strings.Index(schemaDDL, "CREATE EXTENSION IF NOT EXISTS vector")
	require.NotEqual(t, -1, extIdx, "schema must enable the vector extension")

	tableIdx := strings.Index(schemaDDL, "CREATE TABLE IF NOT EXISTS land_plots")
	require.NotEqual(t, -1, tableIdx)

	assert.Less(t, extIdx, tableIdx, "extension must be created before the table that uses vector()")
	assert.Contains(t, schemaDDL, "embedding vector(1024)")
}
