package cmds

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/interviewer/pkg/events"
	"github.com/go-go-golems/interviewer/pkg/helpers"
	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type interviewFlags struct {
	personaID     int
	count         int
	mode          string
	preamble      string
	resume        string
	fromFile      bool
	withChecklist bool
	noFeedback    bool
	noExport      bool
}

func NewInterviewCommand() *cobra.Command {
	f := &interviewFlags{}

	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Generate questions, relay them to a persona and collect feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterview(cmd, f)
		},
	}

	cmd.Flags().IntVar(&f.personaID, "persona", 0, "Persona id (defaults to the first persona)")
	cmd.Flags().IntVar(&f.count, "count", 1, "Questions generated per category")
	cmd.Flags().StringVar(&f.mode, "mode", string(interview.ModeConversation), "How answers are produced (conversation, coaching)")
	cmd.Flags().StringVar(&f.preamble, "preamble", "coach", "Session preamble (coach, persona, learning)")
	cmd.Flags().StringVar(&f.resume, "resume", "", "Resume a transcript saved as JSON or YAML")
	cmd.Flags().BoolVar(&f.fromFile, "from-file", false, "Relay the question file instead of generated questions")
	cmd.Flags().BoolVar(&f.withChecklist, "with-checklist", false, "Pass the configured checklist to question generation")
	cmd.Flags().BoolVar(&f.noFeedback, "no-feedback", false, "Skip the feedback step")
	cmd.Flags().BoolVar(&f.noExport, "no-export", false, "Do not write export files")

	return cmd
}

// printer renders feedback as markdown on terminals and everything else with
// the plain event printer.
func printer(w io.Writer, pretty bool) func(msg *message.Message) error {
	plain := events.PrinterFunc(w)
	return func(msg *message.Message) error {
		if !pretty {
			return plain(msg)
		}
		e, err := events.NewEventFromMessage(msg)
		if err != nil || e.Type != events.EventTypeFeedbackAdded {
			return plain(msg)
		}
		if err := renderMarkdown(w, "## フィードバック\n\n"+e.Content); err != nil {
			log.Warn().Err(err).Msg("could not render feedback")
			return plain(msg)
		}
		msg.Ack()
		return nil
	}
}

func runInterview(cmd *cobra.Command, f *interviewFlags) error {
	mode, err := interview.ParseMode(f.mode)
	if err != nil {
		return err
	}
	ps, err := loadPersonas()
	if err != nil {
		return err
	}
	p, err := selectPersona(ps, f.personaID)
	if err != nil {
		return err
	}
	questions, err := loadQuestions()
	if err != nil {
		return err
	}
	sess, err := openSession(p, f.preamble, f.resume)
	if err != nil {
		return err
	}

	router, err := events.NewEventRouter(events.WithVerbose(viper.GetBool("verbose")))
	if err != nil {
		return err
	}
	defer func() {
		_ = router.Close()
	}()

	pretty := isatty.IsTerminal(os.Stdout.Fd())
	router.AddHandler("printer", events.DefaultTopic, printer(cmd.OutOrStdout(), pretty))

	interviewer, _, err := newInterviewer(interview.WithPublisher(router.Publisher, events.DefaultTopic))
	if err != nil {
		return err
	}

	// every event of this run carries the same correlation id
	correlationID := helpers.NewCorrelationID()
	ctx, cancel := context.WithCancel(helpers.ContextWithCorrelationID(cmd.Context(), correlationID))
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	log.Debug().Str("correlation_id", correlationID).Int("persona", p.ID).Msg("starting interview")

	eg.Go(func() error {
		return router.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()

		select {
		case <-router.Running():
		case <-ctx.Done():
			return ctx.Err()
		}

		toRelay := questions.Questions
		if !f.fromFile {
			opts := interview.GenerateOptions{Count: f.count}
			if f.withChecklist {
				checklist, err := loadChecklist()
				if err != nil {
					return err
				}
				opts.Checklist = checklist
			}
			cqs, err := interviewer.GenerateQuestions(ctx, p, opts)
			if err != nil {
				return err
			}
			toRelay = interview.AllQuestions(cqs)
		}

		res, err := interviewer.RelayQuestions(ctx, sess, p, toRelay, mode)
		log.Debug().
			Str("correlation_id", correlationID).
			Int("asked", res.Asked).
			Int("repeated", res.Repeated).
			Int("skipped", res.Skipped).
			Msg("relayed questions")
		if err != nil {
			// the printer already showed the failure, keep what we have
			log.Warn().Err(err).Msg("relay stopped")
		} else if !f.noFeedback {
			if _, err := interviewer.Feedback(ctx, sess, p, questions.Questions); err != nil {
				log.Warn().Err(err).Msg("feedback failed")
			}
		}

		if !f.noExport {
			if err := exportSession(cmd, sess, p); err != nil {
				return err
			}
		}
		if err != nil {
			return fmt.Errorf("%s", chat.UserMessage(err))
		}
		return nil
	})

	return eg.Wait()
}
