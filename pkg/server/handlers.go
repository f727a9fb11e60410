package server

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/export"
	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/sentiment"
	"github.com/pkg/errors"
)

type SessionResponse struct {
	SessionID string                    `json:"session_id"`
	Version   int64                     `json:"version"`
	Messages  conversation.Conversation `json:"messages"`
	Feedback  []string                  `json:"feedback"`
}

func newSessionResponse(sess *conversation.Session, excludePreamble bool) SessionResponse {
	return SessionResponse{
		SessionID: sess.ID.String(),
		Version:   sess.Version,
		Messages:  sess.History(excludePreamble),
		Feedback:  sess.Feedback(),
	}
}

// newest first when true
func (r SessionResponse) reversed(desc bool) SessionResponse {
	if desc {
		r.Messages = r.Messages.Reversed()
	}
	return r
}

func (s *Server) persona(r *http.Request) (persona.Persona, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return persona.Persona{}, errors.Wrapf(errBadRequest, "invalid persona id %q", chi.URLParam(r, "id"))
	}
	return s.cfg.Personas.Lookup(id)
}

func (s *Server) ListPersonas(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"personas": s.cfg.Personas.List(),
	})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	exclude := r.URL.Query().Get("exclude_preamble") == "true"
	var desc bool
	switch order := r.URL.Query().Get("order"); order {
	case "", "asc":
	case "desc":
		desc = true
	default:
		WriteError(w, r, errors.Wrapf(errBadRequest, "invalid order %q", order))
		return
	}

	var resp SessionResponse
	err = s.withSession(p, func(sess *conversation.Session) error {
		resp = newSessionResponse(sess, exclude).reversed(desc)
		return nil
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

type questionsRequest struct {
	Count     int  `json:"count"`
	Checklist bool `json:"checklist"`
}

func (s *Server) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	req := questionsRequest{Count: s.cfg.QuestionCount}
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Count < 1 {
		WriteError(w, r, errors.Wrap(errBadRequest, "count must be >= 1"))
		return
	}

	opts := interview.GenerateOptions{Count: req.Count}
	if req.Checklist {
		opts.Checklist = s.cfg.Checklist
	}
	cqs, err := s.cfg.Interviewer.GenerateQuestions(r.Context(), p, opts)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"persona_id": p.ID,
		"stage":      p.Stage,
		"categories": cqs,
	})
}

type relayRequest struct {
	Questions []string `json:"questions"`
	Mode      string   `json:"mode"`
}

func (s *Server) RelayQuestions(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	req := relayRequest{}
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	mode, err := interview.ParseMode(req.Mode)
	if err != nil {
		WriteError(w, r, errors.Wrap(errBadRequest, err.Error()))
		return
	}
	if len(req.Questions) == 0 {
		WriteError(w, r, errors.Wrap(errBadRequest, "no questions"))
		return
	}

	var res interview.RelayResult
	err = s.withSession(p, func(sess *conversation.Session) error {
		var err error
		res, err = s.cfg.Interviewer.RelayQuestions(r.Context(), sess, p, req.Questions, mode)
		return err
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

type messageRequest struct {
	Content string `json:"content"`
}

func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	req := messageRequest{}
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	var res *interview.ChatResult
	err = s.withSession(p, func(sess *conversation.Session) error {
		var err error
		res, err = s.cfg.Interviewer.Chat(r.Context(), sess, p, req.Content)
		return err
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

type NextQuestionResponse struct {
	Question  string                `json:"question"`
	Remaining int                   `json:"remaining"`
	Result    *interview.ChatResult `json:"result"`
}

// NextQuestion sends the next question of the configured question file as a
// chat turn. The position is kept per persona and rewound by Reset.
func (s *Server) NextQuestion(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var resp NextQuestionResponse
	err = s.withEntry(p, func(entry *sessionEntry) error {
		q, ok := entry.script.Next()
		if !ok {
			return errNoMoreQuestions
		}
		res, err := s.cfg.Interviewer.Chat(r.Context(), entry.sess, p, q)
		if err != nil {
			return err
		}
		resp = NextQuestionResponse{Question: q, Remaining: entry.script.Remaining(), Result: res}
		return nil
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

type feedbackRequest struct {
	Questions []string `json:"questions"`
}

func (s *Server) PostFeedback(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	req := feedbackRequest{}
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	questions := req.Questions
	if len(questions) == 0 {
		questions = s.cfg.Questions.Questions
	}
	if len(questions) == 0 {
		WriteError(w, r, errors.Wrap(errBadRequest, "no interview questions configured"))
		return
	}

	var feedback string
	err = s.withSession(p, func(sess *conversation.Session) error {
		var err error
		feedback, err = s.cfg.Interviewer.Feedback(r.Context(), sess, p, questions)
		return err
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var resp SessionResponse
	err = s.withEntry(p, func(entry *sessionEntry) error {
		if err := entry.sess.Reset(); err != nil {
			return err
		}
		entry.script.Reset()
		resp = newSessionResponse(entry.sess, false)
		return nil
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

type exportRequest struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`
}

func (s *Server) export(r *http.Request, p persona.Persona, kind string, format string) (string, error) {
	k, err := export.ParseKind(kind)
	if err != nil {
		return "", errors.Wrap(errBadRequest, err.Error())
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", errors.Wrap(errBadRequest, err.Error())
	}

	var path string
	err = s.withSession(p, func(sess *conversation.Session) error {
		snap := export.FromConversation(p.ID, sess.History(false))
		if k == export.KindFeedbackHistory {
			snap = export.FromFeedback(p.ID, sess.Feedback())
		}
		var err error
		path, err = s.cfg.Exporter.Export(r.Context(), snap, f)
		return err
	})
	return path, err
}

func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	req := exportRequest{Kind: string(export.KindChatHistory), Format: string(export.FormatXLSX)}
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	path, err := s.export(r, p, req.Kind, req.Format)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"path": path})
}

// Download exports and streams the file back. The sqlite store is shared by
// every persona and is never served.
func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	p, err := s.persona(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if export.Format(chi.URLParam(r, "format")) == export.FormatSQLite {
		WriteError(w, r, errors.Wrap(errBadRequest, "sqlite exports cannot be downloaded, use POST /export"))
		return
	}
	path, err := s.export(r, p, chi.URLParam(r, "kind"), chi.URLParam(r, "format"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filepath.Base(path)))
	http.ServeFile(w, r, path)
}

type classifyRequest struct {
	Text string `json:"text"`
}

type ClassifyResponse struct {
	Polarity float64                 `json:"polarity"`
	Label    sentiment.Label         `json:"label"`
	LabelJa  string                  `json:"label_ja"`
	Stage    sentiment.LearningStage `json:"stage"`
	Message  string                  `json:"message"`
}

func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	req := classifyRequest{}
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	polarity := s.analyzer.Polarity(req.Text)
	label := sentiment.Classify(polarity)
	stage := sentiment.ClassifyStage(req.Text)
	JSON(w, http.StatusOK, ClassifyResponse{
		Polarity: polarity,
		Label:    label,
		LabelJa:  label.Japanese(),
		Stage:    stage,
		Message:  sentiment.StageMessage(stage, req.Text),
	})
}
