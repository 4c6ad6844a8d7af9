package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(Database{
		Driver: DriverSQLite,
		SQLite: SQLiteConfig{Path: "file:db_test?mode=memory&cache=shared"},
	})
	require.NoError(t, err)
	defer Close(db)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	wrapped := NewGormDB(db)
	assert.Same(t, db, wrapped.DB())
}

func TestNewDatabase_Unsupported(t *testing.T) {
	_, err := NewDatabase(Database{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = NewDatabase(Database{Driver: DriverSQLite})
	assert.ErrorContains(t, err, "sqlite path is required")
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t,
		"root:pw@tcp(db:3306)/reviewhub?charset=utf8mb4&parseTime=True&loc=Local",
		buildMySQLDSN("root", "pw", "db", "", "reviewhub"))
	assert.Equal(t,
		"host=pg port=5432 user=u password=p dbname=d sslmode=disable",
		buildPostgresDSN(PostgresConfig{Host: "pg", User: "u", Password: "p", DBName: "d"}))

	_, err := buildReplicaDialectors([]SourceConfig{{Host: "r1"}})
	assert.Error(t, err)
	ds, err := buildReplicaDialectors([]SourceConfig{{Host: "r1", User: "u", DBName: "d"}})
	require.NoError(t, err)
	assert.Len(t, ds, 1)
}
