package telemetry

import (
	"testing"

	"github.com/multicommerce/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTracingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRegisterDBTracing(t *testing.T) {
	t.Run("disabled registers no plugin", func(t *testing.T) {
		db := newTracingTestDB(t)

		err := RegisterDBTracing(db, config.TelemetryConfig{DBTraceEnabled: false}, zap.NewNop())

		require.NoError(t, err)
		assert.Empty(t, db.Config.Plugins)
	})

	t.Run("enabled registers the otelgorm plugin", func(t *testing.T) {
		db := newTracingTestDB(t)

		err := RegisterDBTracing(db, config.TelemetryConfig{DBTraceEnabled: true}, zap.NewNop())

		require.NoError(t, err)
		assert.NotEmpty(t, db.Config.Plugins)
	})

	t.Run("queries run after registration", func(t *testing.T) {
		db := newTracingTestDB(t)
		require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{DBTraceEnabled: true}, zap.NewNop()))

		// The enrichment callbacks must not break normal statements.
		require.NoError(t, db.Exec("CREATE TABLE samples (id INTEGER PRIMARY KEY, name TEXT)").Error)
		require.NoError(t, db.Exec("INSERT INTO samples (name) VALUES (?)", "a").Error)

		var count int64
		require.NoError(t, db.Raw("SELECT COUNT(*) FROM samples").Scan(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
