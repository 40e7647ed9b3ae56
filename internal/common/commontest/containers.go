// Package commontest starts throwaway containers for integration tests. It is
// imported only from _test files.
package commontest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/sushihentaime/bloglist/internal/common"
	"go.mongodb.org/mongo-driver/mongo"
)

func skipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container backed test in short mode")
	}
}

// RabbitMQ starts a broker container and returns its AMQP URL.
func RabbitMQ(t *testing.T) string {
	skipIfShort(t)
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12.11-management-alpine", rabbitmq.WithAdminUsername("guest"), rabbitmq.WithAdminPassword("guest"))
	if err != nil {
		t.Fatalf("could not start rabbitmq container: %v", err)
	}

	connURL, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("could not get rabbitmq connection URL: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("could not terminate container: %v", err)
		}
	})

	return connURL
}

// Postgres starts a postgres container and migrates it. source changes with the
// caller location relative to the migrations directory, e.g.
// "file://../../migrations".
func Postgres(t *testing.T, source string) *sql.DB {
	skipIfShort(t)
	ctx := context.Background()

	c, err := postgres.Run(ctx,
		"docker.io/postgres:14.11-bookworm",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)))
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}

	connURL, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	m, err := common.Migrate(source, connURL)
	if err != nil {
		t.Fatalf("could not run migrations: %v", err)
	}

	db, err := sql.Open("postgres", connURL)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		m.Close()
		c.Terminate(ctx)
	})

	return db
}

// Mongo starts a mongo container and returns a handle on a fresh database.
func Mongo(t *testing.T) *mongo.Database {
	skipIfShort(t)
	ctx := context.Background()

	c, err := mongodb.Run(ctx, "mongo:7.0")
	if err != nil {
		t.Fatalf("could not start mongo container: %v", err)
	}

	connURL, err := c.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	db, err := common.NewMongoDB(connURL, "testdb")
	if err != nil {
		t.Fatalf("could not connect to mongo: %v", err)
	}

	t.Cleanup(func() {
		common.CloseMongoDB(db)
		c.Terminate(ctx)
	})

	return db
}
