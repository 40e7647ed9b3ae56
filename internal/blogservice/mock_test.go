package blogservice

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) insertBlog(ctx context.Context, b *Blog) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockStore) getBlogByID(ctx context.Context, id string) (*Blog, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*Blog)
	return b, args.Error(1)
}

func (m *MockStore) getBlogs(ctx context.Context) ([]Blog, error) {
	args := m.Called(ctx)
	blogs, _ := args.Get(0).([]Blog)
	return blogs, args.Error(1)
}

func (m *MockStore) updateBlogLikes(ctx context.Context, id string, likes int) (*Blog, error) {
	args := m.Called(ctx, id, likes)
	b, _ := args.Get(0).(*Blog)
	return b, args.Error(1)
}

func (m *MockStore) deleteBlog(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
