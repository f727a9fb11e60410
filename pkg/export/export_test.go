package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *conversation.Session {
	t.Helper()
	s, err := conversation.NewSession("P0")
	require.NoError(t, err)
	_, err = s.Append(conversation.RoleUser, "<Q1> & 質問")
	require.NoError(t, err)
	_, err = s.Append(conversation.RoleAssistant, "A1")
	require.NoError(t, err)
	require.NoError(t, s.AddFeedback("とても良かった"))
	require.NoError(t, s.AddFeedback("改善点あり"))
	return s
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "chat_history_persona_3.xlsx", Filename(KindChatHistory, 3, FormatXLSX))
	assert.Equal(t, "feedback_history_persona_3.json", Filename(KindFeedbackHistory, 3, FormatJSON))
	assert.Equal(t, "chat_history_persona_12.txt", Filename(KindChatHistory, 12, FormatText))
	assert.Equal(t, DatabaseFile, Filename(KindChatHistory, 12, FormatSQLite))
	assert.NotEqual(t, Filename(KindChatHistory, 1, FormatText), Filename(KindChatHistory, 2, FormatText))
}

func TestParse(t *testing.T) {
	k, err := ParseKind("feedback_history")
	require.NoError(t, err)
	assert.Equal(t, KindFeedbackHistory, k)
	_, err = ParseKind("other")
	assert.Error(t, err)

	f, err := ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestExportText(t *testing.T) {
	s := testSession(t)
	e := NewExporter(t.TempDir())
	ctx := context.Background()

	path, err := e.Export(ctx, FromConversation(4, s.History(false)), FormatText)
	require.NoError(t, err)
	assert.Equal(t, "chat_history_persona_4.txt", filepath.Base(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "system: P0\nuser: <Q1> & 質問\nassistant: A1\n", string(b))

	path, err = e.Export(ctx, FromFeedback(4, s.Feedback()), FormatText)
	require.NoError(t, err)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "とても良かった\n\n改善点あり\n\n", string(b))
}

func TestExportJSON(t *testing.T) {
	s := testSession(t)
	e := NewExporter(t.TempDir())
	ctx := context.Background()

	path, err := e.Export(ctx, FromConversation(4, s.History(false)), FormatJSON)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := `[
  {
    "role": "system",
    "content": "P0"
  },
  {
    "role": "user",
    "content": "<Q1> & 質問"
  },
  {
    "role": "assistant",
    "content": "A1"
  }
]
`
	assert.Equal(t, expected, string(b))

	path, err = e.Export(ctx, FromFeedback(4, s.Feedback()), FormatJSON)
	require.NoError(t, err)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"とても良かった\",\n  \"改善点あり\"\n]\n", string(b))
}

func TestExportIsIdempotent(t *testing.T) {
	s := testSession(t)
	e := NewExporter(t.TempDir())
	ctx := context.Background()
	snap := FromConversation(1, s.History(false))

	for _, format := range []Format{FormatText, FormatJSON} {
		path, err := e.Export(ctx, snap, format)
		require.NoError(t, err)
		first, err := os.ReadFile(path)
		require.NoError(t, err)

		path2, err := e.Export(ctx, snap, format)
		require.NoError(t, err)
		assert.Equal(t, path, path2)
		second, err := os.ReadFile(path2)
		require.NoError(t, err)
		assert.Equal(t, first, second, "format %s", format)
	}

	entries, err := os.ReadDir(e.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestExportXLSX(t *testing.T) {
	s := testSession(t)
	e := NewExporter(t.TempDir())
	ctx := context.Background()

	path, err := e.Export(ctx, FromConversation(2, s.History(false)), FormatXLSX)
	require.NoError(t, err)
	first, err := ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"role", "content"},
		{"system", "P0"},
		{"user", "<Q1> & 質問"},
		{"assistant", "A1"},
	}, first)

	_, err = e.Export(ctx, FromConversation(2, s.History(false)), FormatXLSX)
	require.NoError(t, err)
	second, err := ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	path, err = e.Export(ctx, FromFeedback(2, s.Feedback()), FormatXLSX)
	require.NoError(t, err)
	rows, err := ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"feedback"}, {"とても良かった"}, {"改善点あり"}}, rows)
}

func TestExportSQLite(t *testing.T) {
	s := testSession(t)
	e := NewExporter(t.TempDir())
	ctx := context.Background()

	path, err := e.Export(ctx, FromConversation(5, s.History(false)), FormatSQLite)
	require.NoError(t, err)
	assert.Equal(t, DatabaseFile, filepath.Base(path))

	_, err = e.Export(ctx, FromConversation(6, s.History(true)), FormatSQLite)
	require.NoError(t, err)
	_, err = e.Export(ctx, FromFeedback(5, s.Feedback()), FormatSQLite)
	require.NoError(t, err)

	first, err := ReadSQLite(ctx, path, KindChatHistory, 5)
	require.NoError(t, err)
	assert.Equal(t, s.History(false), first.Conversation())

	// exporting again after a reset replaces the rows
	_, err = e.Export(ctx, FromConversation(5, s.History(false)), FormatSQLite)
	require.NoError(t, err)
	again, err := ReadSQLite(ctx, path, KindChatHistory, 5)
	require.NoError(t, err)
	assert.Equal(t, first.Rows, again.Rows)

	require.NoError(t, s.Reset())
	_, err = e.Export(ctx, FromConversation(5, s.History(false)), FormatSQLite)
	require.NoError(t, err)
	afterReset, err := ReadSQLite(ctx, path, KindChatHistory, 5)
	require.NoError(t, err)
	assert.Equal(t, []Row{{Role: "system", Content: "P0"}}, afterReset.Rows)

	other, err := ReadSQLite(ctx, path, KindChatHistory, 6)
	require.NoError(t, err)
	assert.Len(t, other.Rows, 2)

	fb, err := ReadSQLite(ctx, path, KindFeedbackHistory, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"とても良かった", "改善点あり"}, fb.Feedback())
}

func TestExportNothing(t *testing.T) {
	e := NewExporter(t.TempDir())
	_, err := e.Export(context.Background(), FromFeedback(1, nil), FormatJSON)
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = ReadSQLite(context.Background(), filepath.Join(e.Dir, DatabaseFile), KindChatHistory, 1)
	assert.Error(t, err)
}
