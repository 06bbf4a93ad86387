package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/valoracion?sslmode=disable",
		migrateURL("postgres://u:p@db:5432/valoracion?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://ya", migrateURL("pgx5://ya"))
}

func TestMigrationsEmbebidas(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/0001_init.up.sql")
	assert.Contains(t, files, "migrations/0001_init.down.sql")
	assert.Contains(t, files, "migrations/0002_unbounded_amounts.up.sql")
	assert.Contains(t, files, "migrations/0002_unbounded_amounts.down.sql")
}

// Las columnas que replican el total congelado no pueden redondear.
func TestMigrations_MontosSinPrecisionFija(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/0002_unbounded_amounts.up.sql")
	require.NoError(t, err)
	sql := string(up)
	for _, col := range []string{"base_item_value", "total_additions", "total_deductions", "compliance_penalty", "final_value"} {
		assert.Contains(t, sql, "ALTER COLUMN "+col)
	}
	assert.NotContains(t, sql, "NUMERIC(")
	assert.Equal(t, 5, strings.Count(sql, "TYPE NUMERIC"))
}

func TestClampPage(t *testing.T) {
	l, o := clampPage(0, -3)
	assert.Equal(t, 20, l)
	assert.Equal(t, 0, o)
	l, _ = clampPage(500, 0)
	assert.Equal(t, 20, l)
	l, o = clampPage(50, 10)
	assert.Equal(t, 50, l)
	assert.Equal(t, 10, o)
}
