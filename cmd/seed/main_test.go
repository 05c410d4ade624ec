package main

import (
	"context"
	"path/filepath"
	"testing"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/catalog/catalogtest"
	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedWritesCatalogAndClosesConnection(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "seed.db")}
	ctx := context.Background()

	require.NoError(t, seed(ctx, cfg, catalogtest.SampleItems()))

	// 連線已關閉，重新開啟確認資料寫入
	db, err := database.Open(cfg)
	require.NoError(t, err)
	defer func() { _ = database.Close(db) }()

	items, err := catalog.NewStore(db).FindByName(ctx, "Penne Pasta", false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p-penne", items[0].ID)
}

func TestSeedRejectsUnknownDriver(t *testing.T) {
	err := seed(context.Background(), config.DatabaseConfig{Driver: "oracle"}, catalogtest.SampleItems())
	assert.Error(t, err)
}
