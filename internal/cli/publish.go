package cli

import (
	"errors"

	"checklist-cli/internal/model"
	"checklist-cli/internal/revision"
	"checklist-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type changesResult struct {
	TemplateID int64           `json:"template_id" yaml:"template_id"`
	Summary    string          `json:"summary" yaml:"summary"`
	Details    string          `json:"details" yaml:"details"`
	Changes    model.ChangeSet `json:"changes" yaml:"changes"`
}

func newDiffCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <template-id>",
		Short: "Show what the working draft changes relative to the published template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cs, err := app.dataStore().Changes(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": changesResult{
				TemplateID: id,
				Summary:    revision.Summary(cs),
				Details:    revision.Details(cs),
				Changes:    cs,
			}})
		},
	}
}

func newPublishCmd(app *App) *cobra.Command {
	var opts store.PublishOptions

	cmd := &cobra.Command{
		Use:   "publish <template-id>",
		Short: "Publish the working draft as a new revision",
		Long: `Publish records a revision with the change set against the previous published
template. Without --version the minor version is bumped; without --description the
generated change summary is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			s := app.dataStore()
			opts.Author = app.Author
			rev, err := s.Publish(ctx, id, opts)
			if errors.Is(err, store.ErrNoChanges) {
				return writeErr(cmd, errors.New("nothing to publish: draft matches the published template"))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Info("template published",
				zap.Int64("template_id", id),
				zap.Int("revision", rev.RevisionNumber),
				zap.String("version", rev.Version))
			app.recordEvent(ctx, s, "template.publish", id, map[string]any{
				"revision": rev.RevisionNumber,
				"version":  rev.Version,
			})
			return writeOut(cmd, app, map[string]any{"data": rev})
		},
	}
	cmd.Flags().StringVar(&opts.Description, "description", "", "Revision note (default: generated change summary)")
	cmd.Flags().StringVar(&opts.Version, "version", "", "New version (default: bump minor)")
	cmd.Flags().BoolVar(&opts.VersionedName, "versioned-name", false, "Append \"(vX.Y)\" to the template name")
	return cmd
}

func newRevisionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "revisions",
		Aliases: []string{"revision", "rev"},
		Short:   "Inspect published revisions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <template-id>",
		Short: "List revisions (oldest first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			revs, err := app.dataStore().ListRevisions(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": revs})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <template-id> <revision-number>",
		Short: "Show one revision with its change set and snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := parseIndex(args[1])
			if err != nil || n == 0 {
				return writeErr(cmd, errInvalidArg("revision number", args[1]))
			}
			rev, err := app.dataStore().GetRevision(cmd.Context(), id, n)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rev})
		},
	})

	cmd.AddCommand(newRevisionsExportCmd(app))
	return cmd
}
