package userservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sushihentaime/bloglist/internal/common"
)

var (
	ErrAuthenticationFailure = common.NewError(common.KindAuthentication, "invalid username or password")
	ErrInvalidToken          = common.NewError(common.KindAuthentication, "token invalid")
	ErrTokenExpired          = common.NewError(common.KindAuthentication, "token expired")
)

// NewUserService wires a user store to the token manager. mb and c may be nil,
// in which case events are dropped and lookups are not cached.
func NewUserService(m Store, mb common.MessageProducer, t *TokenManager, c *common.Cache[*User], logger *slog.Logger) *UserService {
	if mb == nil {
		mb = common.NoopProducer{}
	}

	return &UserService{
		m:      m,
		mb:     mb,
		t:      t,
		c:      c,
		logger: logger,
	}
}

// CreateUser registers a new user. The password is checked before it is hashed;
// the username rules and uniqueness are enforced by the store.
func (s *UserService) CreateUser(ctx context.Context, username, name, password string) (*User, error) {
	v := common.NewValidator()
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Name:     name,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}
	u.Blogs = []BlogRef{}

	event := common.UserCreatedEvent{ID: u.ID, Username: u.Username, Name: u.Name}
	if err := common.PublishJSON(ctx, s.mb, event, common.UserCreatedKey, common.UserExchange); err != nil {
		s.logger.Error("could not publish user created event", slog.String("username", u.Username), slog.String("error", err.Error()))
	}

	return &u, nil
}

// LoginUser checks the credentials and issues an access token. Unknown users
// and wrong passwords fail the same way.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	token, err := s.t.Issue(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// GetUserByToken verifies token and resolves the user it was issued to.
func (s *UserService) GetUserByToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.t.Parse(token)
	if err != nil {
		return nil, err
	}

	if s.c != nil {
		if u, ok := s.c.Get(common.CacheKeyUserByID(claims.ID)); ok {
			return u, nil
		}
	}

	user, err := s.m.getUserByID(ctx, claims.ID)
	if err != nil {
		switch common.KindOf(err) {
		case common.KindNotFound, common.KindMalformedID:
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	if s.c != nil {
		s.c.Set(common.CacheKeyUserByID(user.ID), user, userCacheTTL)
	}

	return user, nil
}

// GetUsers lists every user with the blogs they created.
func (s *UserService) GetUsers(ctx context.Context) ([]User, error) {
	return s.m.getUsers(ctx)
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
