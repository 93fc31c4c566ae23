package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/cache"
	"github.com/journeyconnect/journeyconnect/internal/server/config"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.LogFormat = "json"
	c.LogLevel = "error"
	return c
}

func stubOpenDB(t *testing.T, fn func(string) (*sql.DB, error)) {
	t.Helper()
	orig := openDB
	openDB = fn
	t.Cleanup(func() { openDB = orig })
}

func TestNewApp_OpenError(t *testing.T) {
	stubOpenDB(t, func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") })

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()
	stubOpenDB(t, func(string) (*sql.DB, error) { return db, nil })

	_, err = NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_UnknownLogFormat(t *testing.T) {
	c := testConfig()
	c.LogFormat = "xml"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestInitCache(t *testing.T) {
	t.Run("disabled without address", func(t *testing.T) {
		app := &App{config: testConfig(), logger: logging.Nop()}
		assert.IsType(t, cache.Nop{}, app.initCache(context.Background()))
		assert.Nil(t, app.redis)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		c := testConfig()
		c.RedisAddr = "127.0.0.1:1"
		app := &App{config: c, logger: logging.Nop()}
		assert.IsType(t, cache.Nop{}, app.initCache(context.Background()))
		assert.Nil(t, app.redis)
	})
}

func TestClose_NilSafe(t *testing.T) {
	app := &App{logger: logging.Nop()}
	assert.NotPanics(t, app.close)
}
