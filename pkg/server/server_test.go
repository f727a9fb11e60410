package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-go-golems/interviewer/pkg/export"
	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPersona = persona.Persona{
	ID:         3,
	Name:       "田中",
	Job:        "製造部 課長",
	Goals:      "現場のペーパーレス化",
	Challenges: "ITに不慣れな作業員",
	Stage:      persona.StageEarlyAdoption,
}

type testServer struct {
	*Server
	completer *chat.MockCompleter
	dir       string
}

func newTestServer(t *testing.T, completer *chat.MockCompleter) *testServer {
	t.Helper()
	personas, err := persona.NewPersonaSet(testPersona)
	require.NoError(t, err)
	dir := t.TempDir()
	s := NewServer(Config{
		Personas:    personas,
		Questions:   &persona.QuestionSet{Questions: []string{"Q1", "Q2"}},
		Interviewer: interview.NewInterviewer(completer),
		Exporter:    export.NewExporter(dir),
	})
	return &testServer{Server: s, completer: completer, dir: dir}
}

func (ts *testServer) do(t *testing.T, method string, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter())
	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListPersonas(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter())
	rec := ts.do(t, http.MethodGet, "/api/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Personas []persona.Persona `json:"personas"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, []persona.Persona{testPersona}, resp.Personas)
}

func TestUnknownPersona(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter())

	rec := ts.do(t, http.MethodGet, "/api/personas/99/session", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/personas/abc/session", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionStartsWithPreamble(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter())

	var full, trimmed SessionResponse
	decodeBody(t, ts.do(t, http.MethodGet, "/api/personas/3/session", nil), &full)
	decodeBody(t, ts.do(t, http.MethodGet, "/api/personas/3/session?exclude_preamble=true", nil), &trimmed)

	require.Len(t, full.Messages, 1)
	assert.Contains(t, full.Messages[0].Content, testPersona.Name)
	assert.Empty(t, trimmed.Messages)
	assert.Equal(t, full.SessionID, trimmed.SessionID)
}

func TestRelayQuestions(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("A1", "A2"))

	rec := ts.do(t, http.MethodPost, "/api/personas/3/relay", map[string]interface{}{
		"questions": []string{"Q1", "Q2", "Q1", " "},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res interview.RelayResult
	decodeBody(t, rec, &res)
	// the repeated Q1 is answered, its answer A1 is already stored
	assert.Equal(t, interview.RelayResult{Asked: 3, Repeated: 1, Skipped: 1}, res)
	assert.Equal(t, 3, ts.completer.Calls())

	var sess SessionResponse
	decodeBody(t, ts.do(t, http.MethodGet, "/api/personas/3/session?exclude_preamble=true", nil), &sess)
	assert.Equal(t, []string{"Q1", "A1", "Q2", "A2"}, sess.Messages.Contents())
}

func TestRelayRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("A1"))

	rec := ts.do(t, http.MethodPost, "/api/personas/3/relay", map[string]interface{}{
		"questions": []string{"Q1"},
		"mode":      "shouting",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/personas/3/relay", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, ts.completer.Calls())
}

func TestServiceFailureKeepsEarlierTurns(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("A1").FailOn(1, errors.New("rate limited")))

	rec := ts.do(t, http.MethodPost, "/api/personas/3/relay", map[string]interface{}{
		"questions": []string{"Q1", "Q2"},
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["error"], "AIの応答を取得できませんでした")
	assert.Contains(t, resp["error"], "rate limited")

	var sess SessionResponse
	decodeBody(t, ts.do(t, http.MethodGet, "/api/personas/3/session?exclude_preamble=true", nil), &sess)
	assert.Equal(t, []string{"Q1", "A1", "Q2"}, sess.Messages.Contents())
}

func TestPostMessage(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("こんにちは、田中です"))

	rec := ts.do(t, http.MethodPost, "/api/personas/3/messages", map[string]string{"content": "はじめまして"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res interview.ChatResult
	decodeBody(t, rec, &res)
	assert.True(t, res.Appended)
	assert.Equal(t, "こんにちは、田中です", res.Reply)

	// the same text after a reply is a new turn
	rec = ts.do(t, http.MethodPost, "/api/personas/3/messages", map[string]string{"content": "はじめまして"})
	require.Equal(t, http.StatusOK, rec.Code)
	res = interview.ChatResult{}
	decodeBody(t, rec, &res)
	assert.True(t, res.Appended)
	assert.Equal(t, 2, ts.completer.Calls())

	var sess SessionResponse
	decodeBody(t, ts.do(t, http.MethodGet, "/api/personas/3/session?exclude_preamble=true", nil), &sess)
	assert.Equal(t, []string{"はじめまして", "こんにちは、田中です", "はじめまして", "こんにちは、田中です"}, sess.Messages.Contents())

	rec = ts.do(t, http.MethodPost, "/api/personas/3/messages", map[string]string{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackExportAndReset(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("A1", "A2", "良いインタビューでした"))

	rec := ts.do(t, http.MethodPost, "/api/personas/3/export", map[string]string{
		"kind":   "feedback_history",
		"format": "json",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/personas/3/relay", map[string]interface{}{
		"questions": []string{"Q1", "Q2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/personas/3/feedback", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fb map[string]string
	decodeBody(t, rec, &fb)
	assert.Equal(t, "良いインタビューでした", fb["feedback"])

	rec = ts.do(t, http.MethodPost, "/api/personas/3/export", map[string]string{
		"kind":   "feedback_history",
		"format": "json",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var exp map[string]string
	decodeBody(t, rec, &exp)
	assert.Equal(t, ts.Server.cfg.Exporter.Path(export.KindFeedbackHistory, 3, export.FormatJSON), exp["path"])
	data, err := os.ReadFile(exp["path"])
	require.NoError(t, err)
	assert.Contains(t, string(data), "良いインタビューでした")

	rec = ts.do(t, http.MethodGet, "/api/personas/3/export/chat_history.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "chat_history_persona_3.txt")
	assert.Contains(t, rec.Body.String(), "user: Q1\n")
	assert.Contains(t, rec.Body.String(), "assistant: A2\n")

	rec = ts.do(t, http.MethodGet, "/api/personas/3/export/chat_history.pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/personas/3/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess SessionResponse
	decodeBody(t, rec, &sess)
	assert.Len(t, sess.Messages, 1)
	assert.Empty(t, sess.Feedback)
}

func TestClassify(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter())

	rec := ts.do(t, http.MethodPost, "/api/classify", map[string]string{"text": "最高です"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res ClassifyResponse
	decodeBody(t, rec, &res)
	assert.Equal(t, 1.0, res.Polarity)
	assert.Equal(t, "ポジティブ", res.LabelJa)

	rec = ts.do(t, http.MethodPost, "/api/classify", map[string]string{"text": "基礎から"})
	res = ClassifyResponse{}
	decodeBody(t, rec, &res)
	assert.Equal(t, "neutral", string(res.Label))
	assert.Equal(t, "zero_learning", string(res.Stage))
}

func TestGenerateQuestions(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("1. 質問A\n2. 質問B"))

	rec := ts.do(t, http.MethodPost, "/api/personas/3/questions", map[string]interface{}{"count": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Stage      persona.Stage                 `json:"stage"`
		Categories []interview.CategoryQuestions `json:"categories"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, persona.StageEarlyAdoption, resp.Stage)
	require.Len(t, resp.Categories, 5)
	assert.Equal(t, []string{"1. 質問A", "2. 質問B"}, resp.Categories[0].Questions)

	rec = ts.do(t, http.MethodPost, "/api/personas/3/questions", map[string]interface{}{"count": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrelationIDHeader(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter())

	rec := ts.do(t, http.MethodGet, "/api/personas", nil)
	first := rec.Header().Get(CorrelationIDHeader)
	assert.NotEmpty(t, first)
	second := ts.do(t, http.MethodGet, "/api/personas", nil).Header().Get(CorrelationIDHeader)
	assert.NotEqual(t, first, second)

	req := httptest.NewRequest(http.MethodGet, "/api/personas", nil)
	req.Header.Set(CorrelationIDHeader, "caller-1")
	rec = httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "caller-1", rec.Header().Get(CorrelationIDHeader))
}

func TestNextQuestion(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("A1", "A2", "A3"))

	var next NextQuestionResponse
	rec := ts.do(t, http.MethodPost, "/api/personas/3/next", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &next)
	assert.Equal(t, "Q1", next.Question)
	assert.Equal(t, 1, next.Remaining)
	require.NotNil(t, next.Result)
	assert.Equal(t, "A1", next.Result.Reply)

	rec = ts.do(t, http.MethodPost, "/api/personas/3/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next = NextQuestionResponse{}
	decodeBody(t, rec, &next)
	assert.Equal(t, "Q2", next.Question)
	assert.Equal(t, 0, next.Remaining)

	rec = ts.do(t, http.MethodPost, "/api/personas/3/next", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 2, ts.completer.Calls())

	var sess SessionResponse
	decodeBody(t, ts.do(t, http.MethodGet, "/api/personas/3/session?exclude_preamble=true&order=desc", nil), &sess)
	assert.Equal(t, []string{"A2", "Q2", "A1", "Q1"}, sess.Messages.Contents())

	rec = ts.do(t, http.MethodGet, "/api/personas/3/session?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// reset rewinds the question file
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/personas/3/reset", nil).Code)
	rec = ts.do(t, http.MethodPost, "/api/personas/3/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next = NextQuestionResponse{}
	decodeBody(t, rec, &next)
	assert.Equal(t, "Q1", next.Question)
}

func TestDownloadRefusesSharedDatabase(t *testing.T) {
	ts := newTestServer(t, chat.NewMockCompleter("A1"))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/personas/3/messages", map[string]string{"content": "Q1"}).Code)

	rec := ts.do(t, http.MethodGet, "/api/personas/3/export/chat_history.sqlite", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, err := os.Stat(ts.Server.cfg.Exporter.Path(export.KindChatHistory, 3, export.FormatSQLite))
	assert.True(t, os.IsNotExist(err))
}
