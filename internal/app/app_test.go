package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mehmetcc/travelize/internal/config"
	"github.com/mehmetcc/travelize/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func memoryConfig() *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{
			Port:            "0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
			AllowedOrigins:  []string{"*"},
		},
		StoreConfig:     &config.StoreConfig{Driver: config.DriverMemory},
		DbConfig:        &config.DbConfig{},
		MongoConfig:     &config.MongoConfig{Database: "test"},
		JWTConfig:       &config.JWTConfig{Secret: "secret", AccessTTL: time.Hour},
		BootstrapConfig: &config.BootstrapConfig{AdminEmail: "Root@X.com"},
	}
}

func TestNewSeedsBootstrapAdmin(t *testing.T) {
	cfg := memoryConfig()
	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	tokens, err := token.NewTokenService(zaptest.NewLogger(t), cfg.JWTConfig)
	require.NoError(t, err)
	tok, _, err := tokens.Issue(token.Claims{"email": "root@x.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := memoryConfig()
	cfg.BootstrapConfig.AdminEmail = ""
	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewFailsWithoutPostgresDSN(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreConfig.Driver = config.DriverPostgres

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
