package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "in-memory database",
			opts: Options{Path: ":memory:", EnableForeignKeys: true},
		},
		{
			name: "file database with WAL",
			opts: Options{Path: filepath.Join(t.TempDir(), "nested", "test.db"), EnableWAL: true, EnableForeignKeys: true},
		},
		{
			name: "empty path creates in-memory database",
			opts: Options{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.opts)
			require.NoError(t, err)
			require.NotNil(t, conn)
			defer conn.Close()

			assert.NoError(t, conn.HealthCheck())
		})
	}
}

func TestDB_HealthCheck(t *testing.T) {
	tests := []struct {
		name      string
		setupConn func() (*DB, func())
		wantErr   bool
	}{
		{
			name: "healthy connection",
			setupConn: func() (*DB, func()) {
				conn, _ := Initialize(Options{Path: ":memory:"})
				return conn, func() { conn.Close() }
			},
		},
		{
			name: "closed connection",
			setupConn: func() (*DB, func()) {
				conn, _ := Initialize(Options{Path: ":memory:"})
				conn.Close()
				return conn, func() {}
			},
			wantErr: true,
		},
		{
			name: "nil connection",
			setupConn: func() (*DB, func()) {
				return nil, func() {}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, cleanup := tt.setupConn()
			defer cleanup()

			err := conn.HealthCheck()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDB_Migrate(t *testing.T) {
	conn, err := Initialize(Options{Path: ":memory:", EnableForeignKeys: true})
	require.NoError(t, err)
	defer conn.Close()

	tables, err := conn.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"voices", "stories", "chunks"}, tables)

	pending, err := conn.PendingMigrations()
	require.NoError(t, err)
	assert.Equal(t, tables, pending)

	require.NoError(t, conn.Migrate())

	pending, err = conn.PendingMigrations()
	require.NoError(t, err)
	assert.Empty(t, pending)

	for _, table := range []string{"voices", "stories", "chunks"} {
		var count int64
		err := conn.DB.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, table)
	}

	// Migrating twice is a no-op
	assert.NoError(t, conn.Migrate())
}

func TestDB_Transaction(t *testing.T) {
	type TestRecord struct {
		gorm.Model
		Value string
	}

	conn, err := Initialize(Options{Path: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.AutoMigrate(&TestRecord{}))

	err = conn.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&TestRecord{Value: "kept?"}).Error; err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	assert.ErrorIs(t, err, gorm.ErrInvalidData)

	var count int64
	conn.DB.Model(&TestRecord{}).Count(&count)
	assert.Zero(t, count)
}
