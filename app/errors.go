package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/bloglist/internal/common"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url))
}

func (app *application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	err := app.writeJSON(w, status, envelope{"error": message}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// errorResponse is the single place where error kinds become HTTP statuses.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var e *common.Error
	if !errors.As(err, &e) {
		app.serverErrorResponse(w, r, err)
		return
	}

	switch e.Kind {
	case common.KindValidation, common.KindMalformedID:
		app.writeErrorResponse(w, r, http.StatusBadRequest, e.Message)
	case common.KindAuthentication:
		w.Header().Set("WWW-Authenticate", "Bearer")
		app.writeErrorResponse(w, r, http.StatusUnauthorized, e.Message)
	case common.KindAuthorization:
		app.writeErrorResponse(w, r, http.StatusForbidden, e.Message)
	case common.KindNotFound:
		app.writeErrorResponse(w, r, http.StatusNotFound, e.Message)
	case common.KindInternal:
		app.serverErrorResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.writeErrorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "unknown endpoint")
}

func (app *application) methodNotAllowedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "token missing or invalid")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
