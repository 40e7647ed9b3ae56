package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloglist/internal/common"
)

var (
	ErrDuplicateUsername = common.NewError(common.KindValidation, "expected `username` to be unique")
	ErrNotFound          = common.NewError(common.KindNotFound, "user not found")
)

func NewUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, username, name, password_hash)
		VALUES ($1, $2, $3, $4)`

	id := uuid.New()

	args := []any{
		id,
		u.Username,
		u.Name,
		u.Password.hash,
	}

	_, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		switch {
		case common.IsConstraintError(err, common.PQUniqueViolation, "users_username_key"):
			return ErrDuplicateUsername
		case common.IsConstraintError(err, common.PQCheckViolation, "users_username_check"):
			return usernameError(u.Username)
		default:
			return err
		}
	}

	u.ID = id.String()
	return nil
}

func (m *DBModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, name, password_hash
		FROM users
		WHERE username = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Name, &u.Password.hash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// getUserByID returns the user without its blog list.
func (m *DBModel) getUserByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, common.MalformedIDError(id, err)
	}

	query := `
		SELECT id, username, name
		FROM users
		WHERE id = $1`

	var u User

	err = m.db.QueryRowContext(ctx, query, uid).Scan(&u.ID, &u.Username, &u.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// getUsers returns every user with its blogs in the order they were created.
func (m *DBModel) getUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT u.id, u.username, u.name, b.id, b.title, b.author, b.url
		FROM users u
		LEFT JOIN blogs b ON b.user_id = u.id
		ORDER BY u.created_at, u.id, b.seq`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var (
			u                          User
			blogID, title, author, url sql.NullString
		)

		err := rows.Scan(&u.ID, &u.Username, &u.Name, &blogID, &title, &author, &url)
		if err != nil {
			return nil, err
		}

		if n := len(users); n == 0 || users[n-1].ID != u.ID {
			u.Blogs = []BlogRef{}
			users = append(users, u)
		}

		if blogID.Valid {
			last := &users[len(users)-1]
			last.Blogs = append(last.Blogs, BlogRef{ID: blogID.String, Title: title.String, Author: author.String, URL: url.String})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
