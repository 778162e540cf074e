package cli

import (
	"fmt"
	"strings"

	"checklist-cli/internal/docs"
	"checklist-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	var width int
	var style string

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in help topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": docs.Topics()})
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic: %s (topics: %s)", args[0], strings.Join(docs.Topics(), ", ")))
			}
			if !raw {
				publish.ApplyColorProfile()
				md = publish.RenderTerminal(md, publish.TermOptions{Width: width, Style: style})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(md, "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().StringVar(&style, "style", "", "Terminal style (dark|light|notty)")
	return cmd
}
