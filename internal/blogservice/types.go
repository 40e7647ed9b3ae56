package blogservice

import (
	"context"
	"database/sql"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store is implemented by the postgres and mongo backed models.
type Store interface {
	// insertBlog persists b, sets its ID and appends it to the owner's list.
	insertBlog(ctx context.Context, b *Blog) error
	getBlogByID(ctx context.Context, id string) (*Blog, error)
	getBlogs(ctx context.Context) ([]Blog, error)
	updateBlogLikes(ctx context.Context, id string, likes int) (*Blog, error)
	deleteBlog(ctx context.Context, id string) error
}

type Blog struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	User   *Owner `json:"user"`
}

// Owner is the public part of the user who created a blog.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type BlogModel struct {
	db *sql.DB
}

type MongoModel struct {
	blogs *mongo.Collection
	users *mongo.Collection
}

type BlogService struct {
	m Store
}
