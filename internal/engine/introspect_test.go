package engine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	_ "modernc.org/sqlite"
)

// openFixtureDB opens an in-memory SQLite database used only to exercise
// scanIntrospectedColumns/genericTableExists against a real *sql.Rows value,
// independent of any target dialect's driver.
func openFixtureDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE widgets (id INTEGER, name TEXT, price REAL)`)
	assert.NoError(t, err)
	return db
}

func TestScanIntrospectedColumnsMapsNullableAndSize(t *testing.T) {
	db := openFixtureDB(t)
	defer db.Close()

	rows, err := db.Query(`
		SELECT 'id' AS column_name, 'INTEGER' AS data_type, 'NO' AS is_nullable,
		       NULL AS character_maximum_length, 10 AS numeric_precision, 0 AS numeric_scale
		UNION ALL
		SELECT 'name', 'TEXT', 'YES', 255, NULL, NULL`)
	assert.NoError(t, err)
	defer rows.Close()

	cols, err := scanIntrospectedColumns(rows, "YES")
	assert.NoError(t, err)
	assert.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.False(t, cols[0].Nullable)
	assert.NotNil(t, cols[0].Precision)
	assert.Equal(t, 10, *cols[0].Precision)

	assert.Equal(t, "name", cols[1].Name)
	assert.True(t, cols[1].Nullable)
	assert.NotNil(t, cols[1].Length)
	assert.Equal(t, 255, *cols[1].Length)
}

func TestGenericTableExists(t *testing.T) {
	db := openFixtureDB(t)
	defer db.Close()

	exists, err := genericTableExists(context.Background(), db,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? || ?`, "widgets", "")
	assert.NoError(t, err)
	assert.True(t, exists)

	missing, err := genericTableExists(context.Background(), db,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? || ?`, "nope", "")
	assert.NoError(t, err)
	assert.False(t, missing)
}
