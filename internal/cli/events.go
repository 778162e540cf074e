package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	var templateID int64

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the local event log (oldest-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := ""
			if templateID > 0 {
				entity = templateEntity(templateID)
			}
			evs, err := app.dataStore().ReadEvents(cmd.Context(), entity, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	cmd.Flags().Int64Var(&templateID, "template", 0, "Only events for this template id")
	return cmd
}
