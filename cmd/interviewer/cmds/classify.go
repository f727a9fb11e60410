package cmds

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-go-golems/interviewer/pkg/sentiment"
	"github.com/spf13/cobra"
)

func NewClassifyCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify TEXT...",
		Short: "Classify the sentiment and learning stage of a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			a := sentiment.NewAnalyzer()
			polarity := a.Polarity(text)
			label := sentiment.Classify(polarity)
			stage := sentiment.ClassifyStage(text)

			w := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(w)
				encoder.SetEscapeHTML(false)
				encoder.SetIndent("", "  ")
				return encoder.Encode(map[string]interface{}{
					"polarity": polarity,
					"label":    label,
					"stage":    stage,
				})
			}

			_, _ = fmt.Fprintf(w, "polarity: %.2f\n", polarity)
			_, _ = fmt.Fprintf(w, "感情分析結果: %s\n", label.Japanese())
			_, _ = fmt.Fprintf(w, "%s\n", sentiment.StageMessage(stage, text))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
