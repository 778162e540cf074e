package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"checklist-cli/internal/autosave"
	"checklist-cli/internal/config"
	"checklist-cli/internal/format"
	"checklist-cli/internal/logging"
	"checklist-cli/internal/model"
	"checklist-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Dir        string
	Format     string
	PrettyJSON bool
	LogLevel   string
	Author     string

	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "checklist",
		Short:         "Quality checklist templates: edit, diff and publish revisions",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Create a template and add items to its working draft
  checklist templates create --name "Bracket inspection"
  checklist items add 1 --title "Dimensions"
  checklist items add-sub 1 0 --title "Width"

  # Review and publish
  checklist diff 1
  checklist publish 1 --description "Initial release"

  # Direct lookup (shortcut for: checklist templates show 1)
  checklist 1
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CHECKLIST_DIR", ""), "Data directory holding checklist.sqlite (default: ~/.checklist/data)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CHECKLIST_FORMAT", ""), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("CHECKLIST_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.Author, "author", envOr("CHECKLIST_AUTHOR", ""), "Author recorded on revisions and events")

	cmd.AddCommand(newTemplatesCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newDiffCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newRevisionsCmd(app))
	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// init resolves settings: flags and env first, then config.yaml, then defaults.
func (app *App) init(cmd *cobra.Command) error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	if strings.TrimSpace(app.Dir) == "" {
		app.Dir = cfg.DataDir
	}
	if strings.TrimSpace(app.Format) == "" {
		app.Format = cfg.Format
	}
	if !format.Valid(app.Format) {
		return writeErr(cmd, fmt.Errorf("unknown format: %s", app.Format))
	}
	if strings.TrimSpace(app.LogLevel) == "" {
		app.LogLevel = cfg.LogLevel
	}
	if strings.TrimSpace(app.Author) == "" {
		app.Author = cfg.Author
	}
	l, err := logging.New(app.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = l.With(zap.String("cmd", cmd.CommandPath()))
	return nil
}

func (app *App) dataStore() store.Store {
	return store.Store{Dir: app.Dir}
}

func (app *App) logger() *zap.Logger {
	return logging.OrNop(app.log)
}

// saveDraft persists tpl through the autosave queue and waits for the write.
func (app *App) saveDraft(ctx context.Context, s store.Store, tpl model.Template) (model.Template, error) {
	debounce := autosave.DefaultDebounce
	if app.cfg != nil {
		if d, err := app.cfg.Debounce(); err == nil {
			debounce = d
		}
	}
	var saved model.Template
	sv := autosave.New(s, autosave.Opts{
		TemplateID: *tpl.ID,
		Debounce:   debounce,
		Logger:     app.logger(),
		OnSaved:    func(t model.Template) { saved = t },
	})
	sv.Notify(tpl)
	if err := sv.Close(ctx); err != nil {
		if sv.Pending() {
			return model.Template{}, fmt.Errorf("draft of template %d not saved: %w", *tpl.ID, err)
		}
		return model.Template{}, err
	}
	return saved, nil
}

// recordEvent appends to the event log. Failures are logged, not returned.
func (app *App) recordEvent(ctx context.Context, s store.Store, typ string, templateID int64, payload any) {
	if _, err := s.AppendEvent(ctx, app.Author, typ, templateEntity(templateID), payload); err != nil {
		app.logger().Warn("append event failed", zap.String("type", typ), zap.Error(err))
	}
}

func templateEntity(id int64) string {
	return fmt.Sprintf("template-%d", id)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
