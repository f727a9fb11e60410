package cmds

import (
	"fmt"

	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/spf13/cobra"
)

func NewQuestionsCommand() *cobra.Command {
	var (
		personaID     int
		count         int
		withChecklist bool
		followUp      string
	)

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate interview questions per category for a persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interviewer, _, err := newInterviewer()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if followUp != "" {
				qs, err := interviewer.FollowUp(cmd.Context(), followUp, count)
				if err != nil {
					return fmt.Errorf("%s", chat.UserMessage(err))
				}
				for _, q := range qs {
					_, _ = fmt.Fprintf(w, "🔹 %s\n", q)
				}
				return nil
			}

			ps, err := loadPersonas()
			if err != nil {
				return err
			}
			p, err := selectPersona(ps, personaID)
			if err != nil {
				return err
			}

			opts := interview.GenerateOptions{Count: count}
			if withChecklist {
				opts.Checklist, err = loadChecklist()
				if err != nil {
					return err
				}
			}

			cqs, err := interviewer.GenerateQuestions(cmd.Context(), p, opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "%s / %s\n", p.Label(), p.Stage)
			for _, cq := range cqs {
				_, _ = fmt.Fprintf(w, "\n📌 %s\n", cq.Category.Name)
				if cq.Notice != "" {
					_, _ = fmt.Fprintf(w, "[notice] %s\n", cq.Notice)
					continue
				}
				for _, q := range cq.Questions {
					_, _ = fmt.Fprintf(w, "🔹 %s\n", q)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&personaID, "persona", 0, "Persona id (defaults to the first persona)")
	cmd.Flags().IntVar(&count, "count", 3, "Questions per category")
	cmd.Flags().BoolVar(&withChecklist, "with-checklist", false, "Pass the configured checklist to the prompt")
	cmd.Flags().StringVar(&followUp, "follow-up", "", "Generate follow-up questions about this text instead")

	return cmd
}
