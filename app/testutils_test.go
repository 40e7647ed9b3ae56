package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/common/commontest"
	"github.com/sushihentaime/bloglist/internal/userservice"
	"go.mongodb.org/mongo-driver/bson"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig() *Config {
	return &Config{
		Port:           "0",
		Environment:    "testing",
		Version:        "1.0.0",
		StoreDriver:    driverPostgres,
		Secret:         "test-secret",
		TokenTTL:       time.Hour,
		RateLimitRPS:   2,
		RateLimitBurst: 4,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newUnitApplication builds an application over a sqlmock backed store. The
// returned mock fails the test on any unexpected query.
func newUnitApplication(t *testing.T, cfg *Config) (*application, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	app := newApplication(cfg, testLogger(), &stores{
		users: userservice.NewUserModel(db),
		blogs: blogservice.NewBlogModel(db),
	}, nil)

	t.Cleanup(func() {
		app.limiter.stop()
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return app, mock
}

// backend is a container backed store plus a way to empty it between tests.
type backend struct {
	name   string
	stores *stores
	reset  func(t *testing.T)
}

func postgresBackend(t *testing.T) backend {
	db := commontest.Postgres(t, "file://../migrations")

	return backend{
		name: driverPostgres,
		stores: &stores{
			users: userservice.NewUserModel(db),
			blogs: blogservice.NewBlogModel(db),
		},
		reset: func(t *testing.T) {
			_, err := db.Exec("DELETE FROM blogs")
			require.NoError(t, err)
			_, err = db.Exec("DELETE FROM users")
			require.NoError(t, err)
		},
	}
}

func mongoBackend(t *testing.T) backend {
	db := commontest.Mongo(t)

	users, err := userservice.NewMongoModel(context.Background(), db)
	require.NoError(t, err)

	return backend{
		name: driverMongo,
		stores: &stores{
			users: users,
			blogs: blogservice.NewMongoModel(db),
		},
		reset: func(t *testing.T) {
			for _, c := range []string{common.BlogsCollection, common.UsersCollection} {
				_, err := db.Collection(c).DeleteMany(context.Background(), bson.M{})
				require.NoError(t, err)
			}
		},
	}
}

func newTestApplication(t *testing.T, b backend) *application {
	t.Helper()

	cfg := testConfig()
	cfg.StoreDriver = b.name

	app := newApplication(cfg, testLogger(), b.stores, nil)
	t.Cleanup(app.limiter.stop)

	return app
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, http.Header, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, res.Header, responseBody
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, []byte) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) post(t *testing.T, path, token string, payload any) (int, http.Header, []byte) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) put(t *testing.T, path, token string, payload any) (int, http.Header, []byte) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, []byte) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

func readJSON[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body: %s", body)
	return v
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()

	return readJSON[map[string]string](t, body)["error"]
}
