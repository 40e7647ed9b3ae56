package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	maps.Copy(w.Header(), headers)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(js, '\n'))

	return err
}

// parseJSON decodes exactly one JSON value of at most maxBodyBytes into dst.
// Unknown fields are ignored so clients may send back whole resources.
func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		return describeBodyError(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}

	return nil
}

// describeBodyError turns decoder failures into messages safe to show the
// client.
func describeBodyError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		targetErr   *json.InvalidUnmarshalError
		tooLargeErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("request body contains badly-formed JSON")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Errorf("request body contains an invalid value for the %q field", typeErr.Field)
	case errors.As(err, &typeErr):
		return fmt.Errorf("request body contains incorrect JSON type (at character %d)", typeErr.Offset)
	case errors.Is(err, io.EOF):
		return errors.New("request body must not be empty")
	case errors.As(err, &tooLargeErr):
		return fmt.Errorf("request body must not be larger than %d bytes", tooLargeErr.Limit)
	case errors.As(err, &targetErr):
		// dst was not a non-nil pointer.
		panic(err)
	default:
		return err
	}
}

func blogID(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}
