package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	handle := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, app.metrics.instrument(path, h))
	}

	handle(http.MethodGet, "/api/health", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", app.metrics.handler())

	// user service
	handle(http.MethodPost, "/api/users", app.registerUserHandler)
	handle(http.MethodGet, "/api/users", app.listUsersHandler)
	handle(http.MethodPost, "/api/login", app.loginUserHandler)

	// blog service
	handle(http.MethodGet, "/api/blogs", app.listBlogsHandler)
	handle(http.MethodPost, "/api/blogs", app.requireAuthUser(app.createBlogHandler))
	handle(http.MethodGet, "/api/blogs/:id", app.getBlogHandler)
	handle(http.MethodPut, "/api/blogs/:id", app.updateBlogHandler)
	handle(http.MethodDelete, "/api/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))

	return app.recoverPanic(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(router)))))
}
