package cmds

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-go-golems/interviewer/pkg/steps/ai/openai"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/settings"
	"github.com/spf13/cobra"
)

func NewTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Token counting helpers",
	}

	var model, encoding string
	count := &cobra.Command{
		Use:   "count [TEXT...]",
		Short: "Count the tokens of the arguments, or of stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}

			codec, err := openai.GetCodec(model, encoding)
			if err != nil {
				return err
			}
			ids, _, err := codec.Encode(text)
			if err != nil {
				return fmt.Errorf("error encoding input: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Model: %s\n", model)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Total tokens: %d\n", len(ids))
			return nil
		},
	}
	count.Flags().StringVar(&model, "model", settings.DefaultModel, "Model used for encoding")
	count.Flags().StringVar(&encoding, "encoding", "", "Encoding used when the model is unknown")

	encodings := &cobra.Command{
		Use:   "encodings",
		Short: "List the available encodings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, e := range openai.Encodings {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}

	cmd.AddCommand(count, encodings)
	return cmd
}
