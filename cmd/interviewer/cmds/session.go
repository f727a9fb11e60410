package cmds

import (
	"context"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/export"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/prompts"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// openSession starts a fresh session for p, or resumes a saved transcript.
func openSession(p persona.Persona, preambleKind string, resume string) (*conversation.Session, error) {
	if resume != "" {
		messages, err := conversation.LoadFromFile(resume)
		if err != nil {
			return nil, err
		}
		sess, err := conversation.FromConversation(messages)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", resume).Int("messages", sess.Len()).Msg("resumed session")
		return sess, nil
	}

	kind, err := prompts.ParsePreambleKind(preambleKind)
	if err != nil {
		return nil, err
	}
	preamble, err := prompts.Preamble(kind, p)
	if err != nil {
		return nil, err
	}
	return conversation.NewSession(preamble)
}

// exportSession writes the transcript and, if there is any, the feedback log.
func exportSession(cmd *cobra.Command, sess *conversation.Session, p persona.Persona) error {
	exporter, format, err := newExporter()
	if err != nil {
		return err
	}
	snapshots := []*export.Snapshot{
		export.FromConversation(p.ID, sess.History(false)),
		export.FromFeedback(p.ID, sess.Feedback()),
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, s := range snapshots {
		if s.Empty() {
			continue
		}
		path, err := exporter.Export(ctx, s, format)
		if err != nil {
			return err
		}
		log.Info().Str("kind", string(s.Kind)).Str("path", path).Msg("exported")
	}
	return nil
}

func renderMarkdown(w io.Writer, text string) error {
	out, err := glamour.Render(text, "dark")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
