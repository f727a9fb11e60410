package cmds

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/interviewer/pkg/events"
	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/sentiment"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personasJSON = `{"personas": [
  {"id": 7, "name": "鈴木", "job": "経理", "goals": "月次決算の短縮", "challenges": "紙の請求書", "DX Stages": "導入前"},
  {"id": 8, "name": "高橋", "job": "営業", "goals": "案件管理", "challenges": "属人化", "DX Stages": "RANDOM"}
]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndSelectPersona(t *testing.T) {
	dir := t.TempDir()
	viper.Set("personas", writeFile(t, dir, "personas.json", personasJSON))
	viper.Set("seed", 42)
	t.Cleanup(viper.Reset)

	first, err := loadPersonas()
	require.NoError(t, err)
	second, err := loadPersonas()
	require.NoError(t, err)
	assert.Equal(t, first.List(), second.List())

	p, err := selectPersona(first, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, p.ID)

	_, err = selectPersona(first, 99)
	assert.ErrorIs(t, err, persona.ErrPersonaNotFound)
}

func TestOpenSession(t *testing.T) {
	p := persona.Persona{ID: 7, Name: "鈴木", Job: "経理", Stage: persona.StageBeforeAdoption}

	sess, err := openSession(p, "coach", "")
	require.NoError(t, err)
	assert.Contains(t, sess.Preamble(), "鈴木")

	_, err = openSession(p, "narrator", "")
	assert.Error(t, err)

	resume := writeFile(t, t.TempDir(), "chat.yaml", "- role: system\n  content: P0\n- role: user\n  content: こんにちは\n")
	sess, err = openSession(p, "coach", resume)
	require.NoError(t, err)
	assert.Equal(t, "P0", sess.Preamble())
	assert.Equal(t, 2, sess.Len())
}

func TestExportSessionSkipsEmptyFeedback(t *testing.T) {
	dir := t.TempDir()
	viper.Set("export-dir", dir)
	viper.Set("export-format", "txt")
	t.Cleanup(viper.Reset)

	p := persona.Persona{ID: 7, Name: "鈴木", Job: "経理", Stage: persona.StageBeforeAdoption}
	sess, err := openSession(p, "coach", "")
	require.NoError(t, err)
	_, err = sess.Append("user", "Q1")
	require.NoError(t, err)

	require.NoError(t, exportSession(&cobra.Command{}, sess, p))

	_, err = os.Stat(filepath.Join(dir, "chat_history_persona_7.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "feedback_history_persona_7.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	handler := printer(&buf, false)

	payload, err := json.Marshal(&events.Event{Type: events.EventTypeFeedbackAdded, Content: "よい対話でした"})
	require.NoError(t, err)
	require.NoError(t, handler(message.NewMessage(watermill.NewUUID(), payload)))

	assert.Equal(t, "\n📜 よい対話でした\n", buf.String())
}

func TestLoadOptionalQuestions(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()

	viper.Set("questions", "")
	qs, err := loadOptionalQuestions()
	require.NoError(t, err)
	assert.Empty(t, qs.Questions)

	viper.Set("questions", filepath.Join(dir, "missing.json"))
	_, err = loadOptionalQuestions()
	assert.Error(t, err)

	viper.Set("questions", writeFile(t, dir, "broken.json", `{"questions": [`))
	_, err = loadOptionalQuestions()
	assert.Error(t, err)
}

func TestChatREPL(t *testing.T) {
	p := persona.Persona{ID: 7, Name: "鈴木", Job: "経理", Stage: persona.StageBeforeAdoption}
	sess, err := openSession(p, "persona", "")
	require.NoError(t, err)
	m := chat.NewMockCompleter("R1", "R2")

	var buf bytes.Buffer
	repl := &chatREPL{
		w:           &buf,
		interviewer: interview.NewInterviewer(m),
		sess:        sess,
		persona:     p,
		learning:    true,
		questions: func() (*persona.QuestionSet, error) {
			return &persona.QuestionSet{Questions: []string{"QF1"}}, nil
		},
	}
	ctx := context.Background()

	for _, line := range []string{"  ", "はい", "next"} {
		quit, err := repl.handle(ctx, line)
		require.NoError(t, err)
		assert.False(t, quit)
	}
	assert.Equal(t, []string{"はい", "R1", "QF1", "R2"}, sess.History(true).Contents())
	assert.Contains(t, buf.String(), "🙂: QF1\n🤖: R2\n")
	assert.Equal(t, 2, strings.Count(buf.String(), "🔹 "+sentiment.NextQuestions()[0]))

	buf.Reset()
	_, err = repl.handle(ctx, "next")
	require.NoError(t, err)
	assert.Equal(t, "(質問はもうありません)\n", buf.String())
	assert.Equal(t, 2, m.Calls())

	buf.Reset()
	_, err = repl.handle(ctx, "history")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "[assistant]: R2\n[user]: QF1\n"), buf.String())

	quit, err := repl.handle(ctx, "exit")
	require.NoError(t, err)
	assert.True(t, quit)
}
