package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-todo-server/internal/config"
	"github.com/adanyl0v/go-todo-server/internal/database"
)

type staticReader struct {
	cfg *config.Config
	err error
}

func (r staticReader) Read() (*config.Config, error) {
	return r.cfg, r.err
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func testConfig(port int) *config.Config {
	return &config.Config{
		Env:     config.EnvProd,
		AppName: "todo-test",
		HTTP: config.HTTPConfig{
			Port:              strconv.Itoa(port),
			ShutdownTimeout:   5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Dialect:        database.DialectPostgres,
			Host:           "127.0.0.1",
			SyncMode:       config.SyncModeForce,
			ConnectTimeout: 2 * time.Second,
		},
	}
}

func withSQLite(t *testing.T, cfg *config.Config, path string) *config.Config {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "todos.db")
	}
	cfg.Database.Dialect = database.DialectSQLite
	cfg.Database.Name = path
	return cfg
}

func newMockOpener(t *testing.T) (DatabaseOpener, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	opener := func(cfg config.DatabaseConfig, logger zerolog.Logger) (*database.DB, error) {
		return database.New(sqlDB, cfg.Dialect, database.Options{
			Dialect: cfg.Dialect,
			Host:    cfg.Host,
			Charset: database.DefaultCharset,
			Collate: database.DefaultCollate,
			Logger:  logger,
		})
	}
	return opener, mock
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

// serveApp bootstraps cfg and serves it until the returned stop func
// is called.
func serveApp(t *testing.T, logger zerolog.Logger, cfg *config.Config, opts ...Option) (string, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	app, err := Bootstrap(ctx, logger, staticReader{cfg: cfg}, opts...)
	if err != nil {
		cancel()
		require.NoError(t, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- app.Serve(ctx)
	}()

	stop := func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("server did not shut down")
		}
	}
	return "http://127.0.0.1:" + strconv.Itoa(app.Addr().(*net.TCPAddr).Port), stop
}

func TestRun(t *testing.T) {
	port := freePort(t)
	logs := &syncBuffer{}

	base, stop := serveApp(t, zerolog.New(logs), withSQLite(t, testConfig(port), ""))
	assert.Contains(t, logs.String(), "todo-test listening on "+strconv.Itoa(port))
	assert.Contains(t, logs.String(), "todo-test has been initialized")
	assert.Equal(t, "http://127.0.0.1:"+strconv.Itoa(port), base)

	code, body := get(t, base+"/nope")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, notFoundBody, body)

	code, body = get(t, base+"/todos/")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, body)

	code, _ = post(t, base+"/todos", `{"title":"buy milk"}`)
	assert.Equal(t, http.StatusCreated, code)

	code, body = get(t, base+"/todos")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"title":"buy milk"`)

	stop()
	assert.Contains(t, logs.String(), "shut down http server")
	assert.Contains(t, logs.String(), "disconnected from database")
}

func TestBootstrap_RecreatesSchemaOnEveryStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")

	base, stop := serveApp(t, zerolog.Nop(), withSQLite(t, testConfig(freePort(t)), path))
	code, _ := post(t, base+"/todos", `{"title":"lost on restart"}`)
	require.Equal(t, http.StatusCreated, code)
	stop()

	base, stop = serveApp(t, zerolog.Nop(), withSQLite(t, testConfig(freePort(t)), path))
	defer stop()
	code, body := get(t, base+"/todos")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, body)
}

func TestBootstrap_SafeSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")

	base, stop := serveApp(t, zerolog.Nop(), withSQLite(t, testConfig(freePort(t)), path))
	code, _ := post(t, base+"/todos", `{"title":"kept on restart"}`)
	require.Equal(t, http.StatusCreated, code)
	stop()

	cfg := withSQLite(t, testConfig(freePort(t)), path)
	cfg.Database.SyncMode = config.SyncModeSafe
	base, stop = serveApp(t, zerolog.Nop(), cfg)
	defer stop()
	code, body := get(t, base+"/todos")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"title":"kept on restart"`)
}

func TestBootstrap_LocalConsoleOutput(t *testing.T) {
	logs := &syncBuffer{}
	cfg := withSQLite(t, testConfig(freePort(t)), "")
	cfg.Env = config.EnvLocal

	_, stop := serveApp(t, zerolog.New(io.Discard), cfg, WithLogOutput(logs))
	stop()

	assert.Contains(t, logs.String(), "todo-test has been initialized")
	assert.NotContains(t, logs.String(), `"level":`)
}

func TestBootstrap_UnreachableDatabase(t *testing.T) {
	logs := &syncBuffer{}
	cfg := testConfig(freePort(t))
	cfg.Database.Port = 1

	_, err := Bootstrap(context.Background(), zerolog.New(logs), staticReader{cfg: cfg})
	require.Error(t, err)
	assert.Contains(t, logs.String(), "failed to authenticate database")
	assert.NotContains(t, logs.String(), "listening on")
}

func TestBootstrap_AuthenticationFailed(t *testing.T) {
	logs := &syncBuffer{}
	opener, mock := newMockOpener(t)
	mock.ExpectPing().WillReturnError(errors.New("password authentication failed"))
	mock.ExpectClose()

	_, err := Bootstrap(context.Background(), zerolog.New(logs), staticReader{cfg: testConfig(freePort(t))}, WithDatabaseOpener(opener))
	require.Error(t, err)
	assert.NotContains(t, logs.String(), "listening on")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_SyncFailed(t *testing.T) {
	logs := &syncBuffer{}
	opener, mock := newMockOpener(t)
	boom := errors.New("permission denied")
	mock.ExpectPing()
	mock.ExpectExec(".+").WillReturnError(boom)
	mock.ExpectClose()

	_, err := Bootstrap(context.Background(), zerolog.New(logs), staticReader{cfg: testConfig(freePort(t))}, WithDatabaseOpener(opener))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, logs.String(), "failed to sync schema")
	assert.NotContains(t, logs.String(), "listening on")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_PortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	logs := &syncBuffer{}
	_, err = Bootstrap(context.Background(), zerolog.New(logs), staticReader{cfg: withSQLite(t, testConfig(port), "")})
	require.Error(t, err)
	assert.Contains(t, logs.String(), "failed to listen")
	assert.Contains(t, logs.String(), "disconnected from database")
	assert.NotContains(t, logs.String(), "listening on")
}

func TestBootstrap_ConfigErrors(t *testing.T) {
	boom := errors.New("bad env")
	_, err := Bootstrap(context.Background(), zerolog.Nop(), staticReader{err: boom})
	require.ErrorIs(t, err, boom)

	cfg := testConfig(freePort(t))
	cfg.Env = "staging"
	_, err = Bootstrap(context.Background(), zerolog.Nop(), staticReader{cfg: cfg})
	require.Error(t, err)

	cfg = testConfig(freePort(t))
	cfg.Database.Dialect = "oracle"
	_, err = Bootstrap(context.Background(), zerolog.Nop(), staticReader{cfg: cfg})
	require.ErrorIs(t, err, database.ErrUnknownDialect)
}
