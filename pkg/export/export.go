// Package export writes transcript and feedback snapshots to durable storage.
// Every export writes the full snapshot, so exporting unchanged state twice
// produces the same output.
package export

import (
	"fmt"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/pkg/errors"
)

var ErrNothingToExport = errors.New("nothing to export")

// Kind is the content being exported.
type Kind string

const (
	KindChatHistory     Kind = "chat_history"
	KindFeedbackHistory Kind = "feedback_history"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindChatHistory, KindFeedbackHistory:
		return k, nil
	}
	return "", errors.Errorf("unknown export kind %q", s)
}

type Format string

const (
	FormatText   Format = "txt"
	FormatJSON   Format = "json"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

var Formats = []Format{FormatText, FormatJSON, FormatXLSX, FormatSQLite}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown export format %q", s)
}

// DatabaseFile is the shared SQLite file every persona and kind is written to.
const DatabaseFile = "interviews.db"

// Filename is the file an export of kind for personaID lands in. File formats
// get one file per persona and kind; SQLite shares DatabaseFile.
func Filename(kind Kind, personaID int, format Format) string {
	if format == FormatSQLite {
		return DatabaseFile
	}
	return fmt.Sprintf("%s_persona_%d.%s", kind, personaID, format)
}

// Row is one exported entry. Feedback rows leave Role empty.
type Row struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	Annotation bool   `json:"annotation,omitempty"`
}

type Snapshot struct {
	PersonaID int
	Kind      Kind
	Rows      []Row
}

// FromConversation snapshots a transcript, preamble included.
func FromConversation(personaID int, messages conversation.Conversation) *Snapshot {
	rows := make([]Row, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, Row{Role: string(m.Role), Content: m.Content, Annotation: m.Annotation})
	}
	return &Snapshot{PersonaID: personaID, Kind: KindChatHistory, Rows: rows}
}

func FromFeedback(personaID int, feedback []string) *Snapshot {
	rows := make([]Row, 0, len(feedback))
	for _, f := range feedback {
		rows = append(rows, Row{Content: f})
	}
	return &Snapshot{PersonaID: personaID, Kind: KindFeedbackHistory, Rows: rows}
}

func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Rows) == 0
}

// Columns are the spreadsheet header for the snapshot kind.
func (s *Snapshot) Columns() []string {
	if s.Kind == KindFeedbackHistory {
		return []string{"feedback"}
	}
	return []string{"role", "content"}
}

// Conversation turns a chat snapshot back into messages.
func (s *Snapshot) Conversation() conversation.Conversation {
	ret := conversation.Conversation{}
	for _, r := range s.Rows {
		m := conversation.NewChatMessage(conversation.Role(r.Role), r.Content)
		m.Annotation = r.Annotation
		ret = append(ret, m)
	}
	return ret
}

// Feedback returns the contents of a feedback snapshot.
func (s *Snapshot) Feedback() []string {
	ret := []string{}
	for _, r := range s.Rows {
		ret = append(ret, r.Content)
	}
	return ret
}
