//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/logistics-be/internal/adapters/db"
	"github.com/ammerola/logistics-be/test/helpers"
)

func TestMigrator_DownAndUp(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	ctx := context.Background()

	migrator, err := db.NewMigrator(&db.MigrationConfig{DatabaseURL: testDB.Config.URL()}, helpers.TestLogger())
	require.NoError(t, err)
	defer migrator.Close()

	version, dirty, err := migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, migrator.Down(ctx))
	version, _, err = migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var requestsTable *string
	require.NoError(t, testDB.PgxPool.QueryRow(ctx, "SELECT to_regclass('public.requests')::text").Scan(&requestsTable))
	assert.Nil(t, requestsTable)

	require.NoError(t, migrator.Up(ctx))
	version, _, err = migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}
