package store

import (
	"context"
	"testing"

	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/logger"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/storage"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	for _, driver := range []string{"", "memory", "MEMORY"} {
		st, err := Open(context.Background(), Options{Driver: driver}, logger.NewNopLogger())
		require.NoError(t, err, driver)
		assert.IsType(t, &storage.MemoryStorage{}, st)
		assert.NoError(t, st.Close())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mongo"}, logger.NewNopLogger())
	assert.ErrorIs(t, err, utils.ErrUnknownStoreDriver)
}

func TestOpenPostgresInvalidSettings(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverPostgres}, logger.NewNopLogger())
	assert.ErrorIs(t, err, utils.ErrStorageEmptyHostName)
}
