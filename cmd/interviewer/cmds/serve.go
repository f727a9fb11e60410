package cmds

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-go-golems/interviewer/pkg/prompts"
	"github.com/go-go-golems/interviewer/pkg/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	var (
		addr     string
		preamble string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interview sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := prompts.ParsePreambleKind(preamble)
			if err != nil {
				return err
			}
			ps, err := loadPersonas()
			if err != nil {
				return err
			}
			questions, err := loadOptionalQuestions()
			if err != nil {
				return err
			}
			checklist, err := loadChecklist()
			if err != nil {
				return err
			}
			interviewer, _, err := newInterviewer()
			if err != nil {
				return err
			}
			exporter, _, err := newExporter()
			if err != nil {
				return err
			}

			s := server.NewServer(server.Config{
				Personas:      ps,
				Questions:     questions,
				Checklist:     checklist,
				Interviewer:   interviewer,
				Exporter:      exporter,
				Preamble:      kind,
				QuestionCount: count,
			})

			srv := &http.Server{
				Addr:        addr,
				Handler:     s.Handler(),
				ReadTimeout: 30 * time.Second,
				// completions can take a while
				WriteTimeout: 5 * time.Minute,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Int("personas", ps.Len()).Msg("Server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}
			stop()

			log.Info().Msg("Shutting down gracefully...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errors.Wrap(err, "server forced to shutdown")
			}
			log.Info().Msg("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&preamble, "preamble", "coach", "Preamble for new sessions (coach, persona, learning)")
	cmd.Flags().IntVar(&count, "count", 1, "Default questions per category")
	return cmd
}
