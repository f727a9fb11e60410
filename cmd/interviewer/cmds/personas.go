package cmds

import (
	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"
)

func NewPersonasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List the loaded personas with their resolved DX stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := loadPersonas()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Job", "Stage", "Goals", "Challenges"})
			for _, p := range ps.List() {
				t.AppendRow(table.Row{p.ID, p.Name, p.Job, p.Stage, p.Goals, p.Challenges})
			}
			t.Render()
			return nil
		},
	}
}
