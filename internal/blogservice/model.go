package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloglist/internal/common"
)

func NewBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

const selectBlogWithOwner = `
		SELECT b.id, b.title, b.author, b.url, b.likes, u.id, u.username, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (*Blog, error) {
	blog := Blog{User: &Owner{}}

	err := row.Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &blog.User.ID, &blog.User.Username, &blog.User.Name)
	if err != nil {
		return nil, err
	}

	return &blog, nil
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, common.MalformedIDError(id, err)
	}
	return uid, nil
}

// insertBlog stores b. The owner's blog list is derived from blogs.user_id, so
// a single insert also appends to it.
func (m *BlogModel) insertBlog(ctx context.Context, b *Blog) error {
	userID, err := parseID(b.User.ID)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO blogs (id, title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	id := uuid.New()

	_, err = m.db.ExecContext(ctx, query, id, b.Title, b.Author, b.URL, b.Likes, userID)
	if err != nil {
		switch {
		case common.IsConstraintError(err, common.PQForeignKeyViolation, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	b.ID = id.String()
	return nil
}

func (m *BlogModel) getBlogByID(ctx context.Context, id string) (*Blog, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	blog, err := scanBlog(m.db.QueryRowContext(ctx, selectBlogWithOwner+`
		WHERE b.id = $1`, uid))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// getBlogs returns all blogs in insertion order.
func (m *BlogModel) getBlogs(ctx context.Context) ([]Blog, error) {
	rows, err := m.db.QueryContext(ctx, selectBlogWithOwner+`
		ORDER BY b.seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) updateBlogLikes(ctx context.Context, id string, likes int) (*Blog, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := `
		WITH b AS (
			UPDATE blogs
			SET likes = $1
			WHERE id = $2
			RETURNING id, title, author, url, likes, user_id
		)
		SELECT b.id, b.title, b.author, b.url, b.likes, u.id, u.username, u.name
		FROM b
		JOIN users u ON b.user_id = u.id`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, likes, uid))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, uid)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}
