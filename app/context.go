package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/bloglist/internal/userservice"
)

type userKey struct{}

// withUser returns a shallow copy of r carrying the resolved caller.
func withUser(r *http.Request, user *userservice.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, user))
}

// userFrom returns the caller stored by authenticate, or nil outside of it.
func userFrom(r *http.Request) *userservice.User {
	user, _ := r.Context().Value(userKey{}).(*userservice.User)
	return user
}

type tokenErrorKey struct{}

// withTokenError records why a supplied bearer token was not accepted.
func withTokenError(r *http.Request, err error) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), tokenErrorKey{}, err))
}

func tokenErrorFrom(r *http.Request) error {
	err, _ := r.Context().Value(tokenErrorKey{}).(error)
	return err
}
