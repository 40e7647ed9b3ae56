package blogservice

import (
	"context"
	"encoding/json"
	"math"

	"github.com/sushihentaime/bloglist/internal/common"
)

var (
	ErrRecordNotFound = common.NewError(common.KindNotFound, "blog not found")
	ErrForbidden      = common.NewError(common.KindAuthorization, "only the creator can delete this blog")
	ErrUserForeignKey = common.NewError(common.KindAuthentication, "user no longer exists")
)

func NewBlogService(m Store) *BlogService {
	return &BlogService{m: m}
}

type CreateBlogRequest struct {
	Title  string
	Author string
	URL    string
	// Likes is the raw decoded JSON value; anything but a number counts as 0.
	Likes any
	User  *Owner
}

// CreateBlog stores a new blog owned by req.User and appends it to the owner's
// blog list.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	blog := &Blog{
		Title:  sanitizeText(req.Title),
		Author: sanitizeText(req.Author),
		URL:    req.URL,
		Likes:  likesOrZero(req.Likes),
		User:   req.User,
	}

	v := common.NewValidator()
	validateTitle(v, blog.Title)
	validateURL(v, blog.URL)
	validateOwner(v, blog.User)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	err := s.m.insertBlog(ctx, blog)
	if err != nil {
		return nil, err
	}

	return blog, nil
}

// GetBlogByID returns a blog with its owner populated.
func (s *BlogService) GetBlogByID(ctx context.Context, id string) (*Blog, error) {
	return s.m.getBlogByID(ctx, id)
}

// GetBlogs returns every blog in creation order with owners populated.
func (s *BlogService) GetBlogs(ctx context.Context) ([]Blog, error) {
	blogs, err := s.m.getBlogs(ctx)
	if err != nil {
		return nil, err
	}

	if blogs == nil {
		blogs = []Blog{}
	}

	return blogs, nil
}

// UpdateBlogLikes sets the like count of a blog. A nil likes leaves the blog
// unchanged.
func (s *BlogService) UpdateBlogLikes(ctx context.Context, id string, likes *int) (*Blog, error) {
	if likes == nil {
		return s.m.getBlogByID(ctx, id)
	}

	v := common.NewValidator()
	validateLikes(v, *likes)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.updateBlogLikes(ctx, id, *likes)
}

// DeleteBlog removes a blog. Only the user who created the blog can delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, id, userID string) error {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return err
	}

	if blog.User == nil || blog.User.ID != userID {
		return ErrForbidden
	}

	return s.m.deleteBlog(ctx, id)
}

func likesOrZero(raw any) int {
	var f float64

	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		return v
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}

	return int(f)
}
