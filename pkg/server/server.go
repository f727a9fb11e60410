// Package server exposes interview sessions over HTTP, one session per persona.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/export"
	"github.com/go-go-golems/interviewer/pkg/helpers"
	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/prompts"
	"github.com/go-go-golems/interviewer/pkg/sentiment"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Personas    *persona.PersonaSet
	Questions   *persona.QuestionSet
	Checklist   *persona.Checklist
	Interviewer *interview.Interviewer
	Exporter    *export.Exporter
	// Preamble is the kind of system preamble new sessions start with.
	Preamble prompts.PreambleKind
	// QuestionCount is the default number of questions per category.
	QuestionCount int
}

type sessionEntry struct {
	mu   sync.Mutex
	sess *conversation.Session
	// script walks the configured question file for the next route
	script *interview.Script
}

// Server owns the sessions. Requests for one persona are serialized, requests
// for different personas run concurrently.
type Server struct {
	cfg      Config
	analyzer *sentiment.Analyzer

	mu       sync.Mutex
	sessions map[int]*sessionEntry
}

func NewServer(cfg Config) *Server {
	if cfg.Preamble == "" {
		cfg.Preamble = prompts.PreambleCoach
	}
	if cfg.QuestionCount == 0 {
		cfg.QuestionCount = 1
	}
	if cfg.Questions == nil {
		cfg.Questions = &persona.QuestionSet{}
	}
	return &Server{
		cfg:      cfg,
		analyzer: sentiment.NewAnalyzer(),
		sessions: map[int]*sessionEntry{},
	}
}

// Handler is the full router with middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/personas", s.ListPersonas)
		r.Post("/classify", s.Classify)

		r.Route("/personas/{id}", func(r chi.Router) {
			r.Get("/session", s.GetSession)
			r.Post("/questions", s.GenerateQuestions)
			r.Post("/relay", s.RelayQuestions)
			r.Post("/messages", s.PostMessage)
			r.Post("/next", s.NextQuestion)
			r.Post("/feedback", s.PostFeedback)
			r.Post("/reset", s.Reset)
			r.Post("/export", s.Export)
			r.Get("/export/{kind}.{format}", s.Download)
		})
	})
}

// withSession runs f holding the persona's session lock, creating the session
// on first use.
func (s *Server) withSession(p persona.Persona, f func(sess *conversation.Session) error) error {
	return s.withEntry(p, func(entry *sessionEntry) error {
		return f(entry.sess)
	})
}

func (s *Server) withEntry(p persona.Persona, f func(entry *sessionEntry) error) error {
	s.mu.Lock()
	entry, ok := s.sessions[p.ID]
	if !ok {
		entry = &sessionEntry{}
		s.sessions[p.ID] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.sess == nil {
		preamble, err := prompts.Preamble(s.cfg.Preamble, p)
		if err != nil {
			return err
		}
		sess, err := conversation.NewSession(preamble)
		if err != nil {
			return err
		}
		entry.sess = sess
		entry.script = interview.NewScript(s.cfg.Questions)
		log.Debug().Int("persona", p.ID).Str("session_id", sess.ID.String()).Msg("created session")
	}
	return f(entry)
}

// CorrelationIDHeader echoes the id every event and log line of a request
// carries.
const CorrelationIDHeader = "X-Correlation-ID"

// correlationID stamps each request with a correlation id, reusing the
// caller's header when present.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = helpers.NewCorrelationID()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(helpers.ContextWithCorrelationID(r.Context(), id)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("correlation_id", helpers.CorrelationIDFromContext(r.Context())).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
