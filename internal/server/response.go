package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tidwall/pretty"

	language "github.com/hanpama/relaygraph/internal/language"
)

type location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type responseError struct {
	Message    string         `json:"message"`
	Locations  []location     `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// failure is a response for a request that never reached execution.
type failure struct {
	Data   any             `json:"data"`
	Errors []responseError `json:"errors"`
}

func requestFailure(msg string) failure {
	return failure{Errors: []responseError{{Message: msg}}}
}

func syntaxFailure(err error) failure {
	var gqlErr *language.Error
	if errors.As(err, &gqlErr) {
		return failure{Errors: []responseError{fromLanguageError(gqlErr)}}
	}
	return requestFailure(err.Error())
}

func validationFailure(errs language.ErrorList) failure {
	out := failure{Errors: make([]responseError, len(errs))}
	for i, err := range errs {
		out.Errors[i] = fromLanguageError(err)
	}
	return out
}

func fromLanguageError(err *language.Error) responseError {
	re := responseError{Message: err.Message, Extensions: err.Extensions}
	for _, loc := range err.Locations {
		re.Locations = append(re.Locations, location{Line: loc.Line, Column: loc.Column})
	}
	return re
}

func (h *Handler) write(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(requestFailure("failed to encode response"))
	}
	if h.opts.Pretty {
		body = pretty.Pretty(body)
	} else {
		body = append(body, '\n')
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
