package userservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/bloglist/internal/common"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultTokenTTL time.Duration = time.Hour

	// userCacheTTL bounds how long a token-resolved user is served from memory.
	userCacheTTL time.Duration = 5 * time.Minute
)

var (
	AnonymousUser = User{}
)

// Store is implemented by the postgres and mongo backed models.
type Store interface {
	insertUser(ctx context.Context, u *User) error
	getUserByUsername(ctx context.Context, username string) (*User, error)
	getUserByID(ctx context.Context, id string) (*User, error)
	getUsers(ctx context.Context) ([]User, error)
}

type UserService struct {
	m      Store
	mb     common.MessageProducer
	t      *TokenManager
	c      *common.Cache[*User]
	logger *slog.Logger
}

type DBModel struct {
	db *sql.DB
}

type MongoModel struct {
	users *mongo.Collection
	blogs *mongo.Collection
}

type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Password Password  `json:"-"`
	Blogs    []BlogRef `json:"blogs"`
}

// BlogRef is the part of a blog listed under its owner.
type BlogRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type Password struct {
	hash []byte
}

// LoginResult is returned to a client that presented valid credentials.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
