package cmds

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/helpers"
	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/sentiment"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

type chatFlags struct {
	personaID int
	preamble  string
	resume    string
	annotate  bool
	learning  bool
	feedback  bool
	noExport  bool
}

func NewChatCommand() *cobra.Command {
	f := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to a persona interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, f)
		},
	}

	cmd.Flags().IntVar(&f.personaID, "persona", 0, "Persona id (defaults to the first persona)")
	cmd.Flags().StringVar(&f.preamble, "preamble", "persona", "Session preamble (coach, persona, learning)")
	cmd.Flags().StringVar(&f.resume, "resume", "", "Resume a transcript saved as JSON or YAML")
	cmd.Flags().BoolVar(&f.annotate, "annotate", false, "Record the sentiment of each message in the transcript")
	cmd.Flags().BoolVar(&f.learning, "learning", false, "Frame each message with its learning stage")
	cmd.Flags().BoolVar(&f.feedback, "feedback", false, "Ask for feedback on the question file when the chat ends")
	cmd.Flags().BoolVar(&f.noExport, "no-export", false, "Do not write export files")

	return cmd
}

func runChat(cmd *cobra.Command, f *chatFlags) error {
	ps, err := loadPersonas()
	if err != nil {
		return err
	}
	p, err := selectPersona(ps, f.personaID)
	if err != nil {
		return err
	}
	sess, err := openSession(p, f.preamble, f.resume)
	if err != nil {
		return err
	}
	interviewer, _, err := newInterviewer(
		interview.WithAnnotate(f.annotate),
		interview.WithLearningStages(f.learning),
	)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	ui := &input.UI{
		Writer: w,
		Reader: cmd.InOrStdin(),
	}
	ctx := helpers.ContextWithCorrelationID(cmd.Context(), helpers.NewCorrelationID())
	log.Debug().Str("correlation_id", helpers.CorrelationIDFromContext(ctx)).Int("persona", p.ID).Msg("starting chat")

	repl := &chatREPL{
		w:           w,
		interviewer: interviewer,
		sess:        sess,
		persona:     p,
		learning:    f.learning,
		questions:   loadQuestions,
	}
	_, _ = fmt.Fprintf(w, "%s と会話します。next で質問ファイルの次の質問を送信、history で履歴を表示、exit で終了します。\n", p.Label())

	for {
		text, err := ui.Ask("🙂", &input.Options{
			HideOrder: true,
			Loop:      false,
		})
		if errors.Is(err, input.ErrInterrupted) {
			break
		}
		if err != nil {
			// stdin closed
			log.Debug().Err(err).Msg("input ended")
			break
		}
		quit, err := repl.handle(ctx, text)
		if err != nil {
			return err
		}
		if quit {
			break
		}
	}

	if f.learning {
		levels := sentiment.CountLevels(sess.History(true))
		_, _ = fmt.Fprintf(w, "\n学習レベル: ゼロ %d / 第一 %d / 第二 %d / 第三 %d (計 %d)\n",
			levels.Zero, levels.First, levels.Second, levels.Third, levels.Total())
	}

	if f.feedback {
		questions, err := loadQuestions()
		if err != nil {
			return err
		}
		text, err := interviewer.Feedback(ctx, sess, p, questions.Questions)
		if err != nil {
			_, _ = fmt.Fprintf(w, "[error] %s\n", chat.UserMessage(err))
		} else if isatty.IsTerminal(os.Stdout.Fd()) {
			if err := renderMarkdown(w, "## フィードバック\n\n"+text); err != nil {
				return err
			}
		} else {
			_, _ = fmt.Fprintf(w, "\n📜 %s\n", text)
		}
	}

	if f.noExport {
		return nil
	}
	return exportSession(cmd, sess, p)
}

// chatREPL handles one line of chat input at a time.
type chatREPL struct {
	w           io.Writer
	interviewer *interview.Interviewer
	sess        *conversation.Session
	persona     persona.Persona
	learning    bool
	// questions loads the question file on the first next command
	questions func() (*persona.QuestionSet, error)
	script    *interview.Script
}

func (c *chatREPL) handle(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	switch text {
	case "":
		return false, nil
	case "exit", "quit":
		return true, nil
	case "history":
		for _, m := range c.sess.History(true).Reversed() {
			_, _ = fmt.Fprintln(c.w, m.View())
		}
		return false, nil
	case "next":
		if c.script == nil {
			qs, err := c.questions()
			if err != nil {
				_, _ = fmt.Fprintf(c.w, "[error] %s\n", err)
				return false, nil
			}
			c.script = interview.NewScript(qs)
		}
		q, ok := c.script.Next()
		if !ok {
			_, _ = fmt.Fprintln(c.w, "(質問はもうありません)")
			return false, nil
		}
		_, _ = fmt.Fprintf(c.w, "🙂: %s\n", q)
		text = q
	}

	res, err := c.interviewer.Chat(ctx, c.sess, c.persona, text)
	if errors.Is(err, chat.ErrService) {
		_, _ = fmt.Fprintf(c.w, "[error] %s\n", chat.UserMessage(err))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if res.Label != "" {
		_, _ = fmt.Fprintf(c.w, "感情分析結果: %s\n", res.Label.Japanese())
	}
	_, _ = fmt.Fprintf(c.w, "🤖: %s\n", res.Reply)
	if c.learning {
		for _, q := range sentiment.NextQuestions() {
			_, _ = fmt.Fprintf(c.w, "🔹 %s\n", q)
		}
	}
	return false, nil
}
