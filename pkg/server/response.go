package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/export"
	"github.com/go-go-golems/interviewer/pkg/helpers"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	errBadRequest      = errors.New("bad request")
	errNoMoreQuestions = errors.New("no more questions")
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// WriteError maps err to a status code and a plain-text message. Unexpected
// errors are logged with the request's correlation id.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, persona.ErrPersonaNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrService):
		Error(w, http.StatusBadGateway, chat.UserMessage(err))
	case errors.Is(err, export.ErrNothingToExport):
		Error(w, http.StatusConflict, "履歴がありません。")
	case errors.Is(err, errNoMoreQuestions):
		Error(w, http.StatusConflict, "質問はもうありません。")
	case errors.Is(err, errBadRequest),
		errors.Is(err, persona.ErrValidation),
		errors.Is(err, conversation.ErrEmptyContent),
		errors.Is(err, conversation.ErrInvalidRole):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().
			Err(err).
			Str("correlation_id", helpers.CorrelationIDFromContext(r.Context())).
			Msg("request failed")
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(errBadRequest, "invalid body: %v", err)
	}
	return nil
}
