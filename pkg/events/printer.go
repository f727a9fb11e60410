package events

import (
	"fmt"
	"io"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// PrinterFunc returns a handler writing a human readable line per event.
// Messages that are not events are logged and dropped. Errors carry the run's
// correlation id so they can be matched against the log file.
func PrinterFunc(w io.Writer) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromMessage(msg)
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed event")
			return nil
		}

		switch e.Type {
		case EventTypeQuestionsGenerated:
			if _, err := fmt.Fprintf(w, "\n📌 %s\n", e.Category); err != nil {
				return err
			}
			for _, q := range e.Items {
				if _, err := fmt.Fprintf(w, "🔹 %s\n", q); err != nil {
					return err
				}
			}

		case EventTypeMessageAppended:
			speaker := "🤖"
			if e.Role == "user" {
				speaker = "🙂"
			}
			if _, err := fmt.Fprintf(w, "%s: %s\n", speaker, strings.TrimRight(e.Content, "\n")); err != nil {
				return err
			}

		case EventTypeMessageSkipped:
			log.Debug().
				Str("role", e.Role).
				Str("correlation_id", e.CorrelationID).
				Msg("duplicate message skipped")

		case EventTypeFeedbackAdded:
			if _, err := fmt.Fprintf(w, "\n📜 %s\n", e.Content); err != nil {
				return err
			}

		case EventTypeNotice:
			if _, err := fmt.Fprintf(w, "\n[notice] %s\n", e.Content); err != nil {
				return err
			}

		case EventTypeError:
			line := e.Error
			if e.CorrelationID != "" {
				line += " (run " + e.CorrelationID + ")"
			}
			if _, err := fmt.Fprintf(w, "\n[error] %s\n", line); err != nil {
				return err
			}
		}

		return nil
	}
}
