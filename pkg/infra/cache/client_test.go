package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/streamsentry/streamsentry/pkg/infra/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SaveTimeoutMarker(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewClientWithRedis(db)

	streamID := uuid.New()
	userID := uuid.New()
	key := fmt.Sprintf(cache.TimeoutKeyPattern, streamID.String(), userID.String())

	t.Run("sets marker with ttl", func(t *testing.T) {
		mock.ExpectSet(key, "1", time.Minute).SetVal("OK")

		err := c.SaveTimeoutMarker(context.Background(), streamID, userID, time.Minute)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		err := c.SaveTimeoutMarker(context.Background(), streamID, userID, 0)
		assert.Error(t, err)
	})
}

func TestClient_TimeoutMarkerExists(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewClientWithRedis(db)

	streamID := uuid.New()
	userID := uuid.New()
	key := fmt.Sprintf(cache.TimeoutKeyPattern, streamID.String(), userID.String())

	t.Run("present", func(t *testing.T) {
		mock.ExpectExists(key).SetVal(1)

		exists, err := c.TimeoutMarkerExists(context.Background(), streamID, userID)

		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("absent", func(t *testing.T) {
		mock.ExpectExists(key).SetVal(0)

		exists, err := c.TimeoutMarkerExists(context.Background(), streamID, userID)

		require.NoError(t, err)
		assert.False(t, exists)
	})
}
