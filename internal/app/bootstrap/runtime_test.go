package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	appconfig "github.com/wolfman30/lifecoach-booking/internal/config"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, nil, false))
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.New("error"), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.New("error"), true))
}

func TestBuildRepositoryMemory(t *testing.T) {
	repo, cleanup, err := BuildRepository(context.Background(), &appconfig.Config{BookingStore: "memory"}, logging.New("error"))
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &bookings.InMemoryRepository{}, repo)
}

func TestBuildRepositoryRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{BookingStore: StoreRedis, RedisAddr: mr.Addr()}

	repo, cleanup, err := BuildRepository(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	defer cleanup()
	require.IsType(t, &bookings.RedisRepository{}, repo)

	b := &bookings.Booking{
		ID:        "b-1",
		Request:   bookings.Request{SelectedDate: "2025-03-04", SelectedTime: "07:00"},
		CreatedAt: time.Now().UTC(),
		Status:    bookings.StatusConfirmed,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	got, err := repo.Get(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, "07:00", got.SelectedTime)
}

func TestBuildRepositoryErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *appconfig.Config
	}{
		{"nil config", nil},
		{"redis without server", &appconfig.Config{BookingStore: StoreRedis}},
		{"postgres without url", &appconfig.Config{BookingStore: StorePostgres}},
		{"unknown store", &appconfig.Config{BookingStore: "dynamo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cleanup, err := BuildRepository(context.Background(), tt.cfg, logging.New("error"))
			require.Error(t, err)
			assert.Nil(t, repo)
			require.NotNil(t, cleanup)
			cleanup()
		})
	}
}
