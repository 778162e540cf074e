package cli

import (
	"errors"
	"fmt"
	"strings"

	"checklist-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newRenderCmd(app *App) *cobra.Command {
	var as string
	var draft bool
	var width int
	var style string
	var noImages bool

	cmd := &cobra.Command{
		Use:   "render <template-id>",
		Short: "Render a template to stdout (markdown|html|term|outline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			tpl, err := loadTemplateOrDraft(cmd, app, id, draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.DefaultRenderOptions()
			opt.IncludeImages = !noImages

			var out string
			switch strings.ToLower(strings.TrimSpace(as)) {
			case "", "markdown", "md":
				out = publish.RenderTemplateMarkdown(tpl, opt)
			case "html":
				out, err = publish.RenderHTML(tpl.Name, publish.RenderTemplateMarkdown(tpl, opt))
				if err != nil {
					return writeErr(cmd, err)
				}
			case "term", "terminal":
				publish.ApplyColorProfile()
				out = publish.RenderTerminal(publish.RenderTemplateMarkdown(tpl, opt), publish.TermOptions{Width: width, Style: style})
			case "outline":
				publish.ApplyColorProfile()
				out = publish.RenderOutline(tpl, width)
			default:
				return writeErr(cmd, errors.New("unknown --as (use markdown|html|term|outline)"))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
			return err
		},
	}
	cmd.Flags().StringVar(&as, "as", "markdown", "Output kind (markdown|html|term|outline)")
	cmd.Flags().BoolVar(&draft, "draft", false, "Render the working draft instead of the published template")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap/truncate width for term and outline output")
	cmd.Flags().StringVar(&style, "style", "", "Terminal style for --as term (dark|light|notty; default: $CHECKLIST_MD_STYLE)")
	cmd.Flags().BoolVar(&noImages, "no-images", false, "Omit sample image links")
	return cmd
}

func newRevisionsExportCmd(app *App) *cobra.Command {
	var toDir string
	var overwrite bool
	var html bool

	cmd := &cobra.Command{
		Use:   "export <template-id>",
		Short: "Export every revision of a template as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			revs, err := app.dataStore().ListRevisions(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteRevisions(id, revs, toDir, publish.WriteOptions{Overwrite: overwrite, HTML: html})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Output directory (required)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&html, "html", false, "Also write standalone HTML pages")
	return cmd
}
