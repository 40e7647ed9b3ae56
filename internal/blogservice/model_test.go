package blogservice

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloglist/internal/common"
)

const (
	testBlogID = "0b8f3a2e-5d1c-4c53-9a1f-2f7c1b9f6e10"
	testUserID = "5f1c0a38-8f7e-4d38-9a56-7a3a1f1f8a01"
)

var blogColumns = []string{"id", "title", "author", "url", "likes", "id", "username", "name"}

func newModelWithMock(t *testing.T) (*BlogModel, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return NewBlogModel(db), mock
}

func TestBlogModelInsertBlog(t *testing.T) {
	q := `(?s)INSERT\s+INTO\s+blogs\s*\(id,\s*title,\s*author,\s*url,\s*likes,\s*user_id\)`

	testCases := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "success"},
		{
			name:    "owner missing",
			dbErr:   &pq.Error{Code: common.PQForeignKeyViolation, Constraint: "blogs_user_id_fkey"},
			wantErr: ErrUserForeignKey,
		},
		{
			name:    "database down",
			dbErr:   sql.ErrConnDone,
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, mock := newModelWithMock(t)

			exp := mock.ExpectExec(q).WithArgs(sqlmock.AnyArg(), "Prueba-1", "Ana", "/p1", 2, uuid.MustParse(testUserID))
			if tc.dbErr != nil {
				exp.WillReturnError(tc.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			b := &Blog{Title: "Prueba-1", Author: "Ana", URL: "/p1", Likes: 2, User: &Owner{ID: testUserID}}
			err := m.insertBlog(context.Background(), b)

			if tc.wantErr == nil {
				require.NoError(t, err)
				_, err := uuid.Parse(b.ID)
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, b.ID)
		})
	}
}

func TestBlogModelMalformedIDs(t *testing.T) {
	m, _ := newModelWithMock(t)
	ctx := context.Background()

	err := m.insertBlog(ctx, &Blog{Title: "t", URL: "u", User: &Owner{ID: "nope"}})
	assert.Equal(t, common.KindMalformedID, common.KindOf(err))

	_, err = m.getBlogByID(ctx, "nope")
	assert.Equal(t, common.KindMalformedID, common.KindOf(err))

	_, err = m.updateBlogLikes(ctx, "nope", 1)
	assert.Equal(t, common.KindMalformedID, common.KindOf(err))

	err = m.deleteBlog(ctx, "nope")
	assert.Equal(t, common.KindMalformedID, common.KindOf(err))
}

func TestBlogModelGetBlogByID(t *testing.T) {
	q := `(?s)SELECT\s+b\.id.+FROM\s+blogs\s+b\s+JOIN\s+users\s+u.+WHERE\s+b\.id\s*=\s*\$1`

	t.Run("found", func(t *testing.T) {
		m, mock := newModelWithMock(t)

		rows := sqlmock.NewRows(blogColumns).
			AddRow(testBlogID, "Prueba-1", "Ana", "/p1", 3, testUserID, "testuser", "Test User")
		mock.ExpectQuery(q).WithArgs(uuid.MustParse(testBlogID)).WillReturnRows(rows)

		b, err := m.getBlogByID(context.Background(), testBlogID)
		require.NoError(t, err)
		assert.Equal(t, &Blog{
			ID:     testBlogID,
			Title:  "Prueba-1",
			Author: "Ana",
			URL:    "/p1",
			Likes:  3,
			User:   &Owner{ID: testUserID, Username: "testuser", Name: "Test User"},
		}, b)
	})

	t.Run("not found", func(t *testing.T) {
		m, mock := newModelWithMock(t)

		mock.ExpectQuery(q).WithArgs(uuid.MustParse(testBlogID)).WillReturnRows(sqlmock.NewRows(blogColumns))

		_, err := m.getBlogByID(context.Background(), testBlogID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestBlogModelGetBlogs(t *testing.T) {
	q := `(?s)SELECT\s+b\.id.+FROM\s+blogs\s+b\s+JOIN\s+users\s+u.+ORDER\s+BY\s+b\.seq`

	t.Run("ordered", func(t *testing.T) {
		m, mock := newModelWithMock(t)

		rows := sqlmock.NewRows(blogColumns).
			AddRow(testBlogID, "Prueba-1", "Ana", "/p1", 0, testUserID, "testuser", "Test User").
			AddRow(uuid.NewString(), "Prueba-2", "Ana", "/p2", 1, testUserID, "testuser", "Test User")
		mock.ExpectQuery(q).WillReturnRows(rows)

		blogs, err := m.getBlogs(context.Background())
		require.NoError(t, err)
		require.Len(t, blogs, 2)
		assert.Equal(t, "Prueba-1", blogs[0].Title)
		assert.Equal(t, "Prueba-2", blogs[1].Title)
		assert.Equal(t, "testuser", blogs[1].User.Username)
	})

	t.Run("empty", func(t *testing.T) {
		m, mock := newModelWithMock(t)

		mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows(blogColumns))

		blogs, err := m.getBlogs(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, blogs)
		assert.Empty(t, blogs)
	})
}

func TestBlogModelUpdateBlogLikes(t *testing.T) {
	q := `(?s)WITH\s+b\s+AS\s*\(\s*UPDATE\s+blogs\s+SET\s+likes\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2`

	t.Run("updated", func(t *testing.T) {
		m, mock := newModelWithMock(t)

		rows := sqlmock.NewRows(blogColumns).
			AddRow(testBlogID, "Prueba-1", "Ana", "/p1", 9, testUserID, "testuser", "Test User")
		mock.ExpectQuery(q).WithArgs(9, uuid.MustParse(testBlogID)).WillReturnRows(rows)

		b, err := m.updateBlogLikes(context.Background(), testBlogID, 9)
		require.NoError(t, err)
		assert.Equal(t, 9, b.Likes)
	})

	t.Run("not found", func(t *testing.T) {
		m, mock := newModelWithMock(t)

		mock.ExpectQuery(q).WithArgs(9, uuid.MustParse(testBlogID)).WillReturnRows(sqlmock.NewRows(blogColumns))

		_, err := m.updateBlogLikes(context.Background(), testBlogID, 9)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestBlogModelDeleteBlog(t *testing.T) {
	q := `(?s)DELETE\s+FROM\s+blogs\s+WHERE\s+id\s*=\s*\$1`

	testCases := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "deleted", rows: 1},
		{name: "not found", rows: 0, wantErr: ErrRecordNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, mock := newModelWithMock(t)

			mock.ExpectExec(q).WithArgs(uuid.MustParse(testBlogID)).WillReturnResult(sqlmock.NewResult(0, tc.rows))

			err := m.deleteBlog(context.Background(), testBlogID)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
