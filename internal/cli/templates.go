package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"checklist-cli/internal/model"
	"checklist-cli/internal/outline"
	"checklist-cli/internal/publish"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTemplatesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "tpl"},
		Short:   "Create, inspect and export checklist templates",
	}

	cmd.AddCommand(newTemplatesCreateCmd(app))
	cmd.AddCommand(newTemplatesListCmd(app))
	cmd.AddCommand(newTemplatesShowCmd(app))
	cmd.AddCommand(newTemplatesImportCmd(app))
	cmd.AddCommand(newTemplatesExportCmd(app))
	cmd.AddCommand(newTemplatesDeleteCmd(app))
	return cmd
}

func newTemplatesCreateCmd(app *App) *cobra.Command {
	var tpl model.Template
	var active bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty template (published baseline + working draft)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(tpl.Name) == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			tpl.IsActive = model.Flag(active)
			ctx := cmd.Context()
			s := app.dataStore()
			created, err := s.CreateTemplate(ctx, tpl)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.recordEvent(ctx, s, "template.create", *created.ID, map[string]any{"name": created.Name})
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}
	cmd.Flags().StringVar(&tpl.Name, "name", "", "Template name (required)")
	cmd.Flags().StringVar(&tpl.Category, "category", "", "Category")
	cmd.Flags().StringVar(&tpl.Description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&tpl.PartNumber, "part-number", "", "Part number")
	cmd.Flags().StringVar(&tpl.ProductType, "product-type", "", "Product type")
	cmd.Flags().StringVar(&tpl.Version, "version", "", "Initial version (default 1.0)")
	cmd.Flags().BoolVar(&active, "active", true, "Mark the template active")
	return cmd
}

func newTemplatesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := app.dataStore().ListTemplates(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": infos})
		},
	}
}

func newTemplatesShowCmd(app *App) *cobra.Command {
	var draft bool
	var nested bool

	cmd := &cobra.Command{
		Use:   "show <template-id>",
		Short: "Show a template (published baseline unless --draft)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s := app.dataStore()
			var tpl model.Template
			if draft {
				tpl, err = s.LoadDraft(cmd.Context(), id)
			} else {
				tpl, err = s.LoadTemplate(cmd.Context(), id)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if nested {
				tpl.Items = outline.Nest(tpl.Items)
			}
			return writeOut(cmd, app, map[string]any{"data": tpl})
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "Show the working draft")
	cmd.Flags().BoolVar(&nested, "nested", false, "Group child items under their parents (import-compatible)")
	return cmd
}

func newTemplatesImportCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a template from JSON or YAML (nested or flat items)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := decodeTemplateFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(name) != "" {
				tpl.Name = name
			}
			if strings.TrimSpace(tpl.Name) == "" {
				tpl.Name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			ctx := cmd.Context()
			s := app.dataStore()
			created, err := s.CreateTemplate(ctx, tpl)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Info("template imported", zap.String("file", args[0]), zap.Int64("template_id", *created.ID), zap.Int("items", len(created.Items)))
			app.recordEvent(ctx, s, "template.import", *created.ID, map[string]any{"file": filepath.Base(args[0])})
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Override the template name")
	return cmd
}

func newTemplatesExportCmd(app *App) *cobra.Command {
	var toDir string
	var overwrite bool
	var html bool
	var draft bool
	var noImages bool

	cmd := &cobra.Command{
		Use:   "export <template-id>",
		Short: "Export a template as Markdown (and optionally HTML)",
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
			tpl, err := loadTemplateOrDraft(cmd, app, id, draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			render := publish.DefaultRenderOptions()
			render.IncludeImages = !noImages
			res, err := publish.WriteTemplate(tpl, toDir, publish.WriteOptions{
				Overwrite: overwrite,
				HTML:      html,
				Render:    render,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Output directory (required)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&html, "html", false, "Also write a standalone HTML page")
	cmd.Flags().BoolVar(&draft, "draft", false, "Export the working draft instead of the published baseline")
	cmd.Flags().BoolVar(&noImages, "no-images", false, "Omit sample image links")
	return cmd
}

func newTemplatesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a template with its draft and revision history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			s := app.dataStore()
			if err := s.DeleteTemplate(ctx, id); err != nil {
				return writeErr(cmd, err)
			}
			app.recordEvent(ctx, s, "template.delete", id, nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}

func loadTemplateOrDraft(cmd *cobra.Command, app *App, id int64, draft bool) (model.Template, error) {
	s := app.dataStore()
	if draft {
		return s.LoadDraft(cmd.Context(), id)
	}
	return s.LoadTemplate(cmd.Context(), id)
}

// decodeTemplateFile reads a template document. YAML is chosen by extension, JSON otherwise.
// A bare item list is accepted as a template without metadata.
func decodeTemplateFile(path string) (model.Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.Template{}, err
	}
	isYAML := false
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		isYAML = true
	}

	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") || (isYAML && strings.HasPrefix(trimmed, "-")) {
		var items []model.ChecklistItem
		if isYAML {
			err = yaml.Unmarshal(b, &items)
		} else {
			err = json.Unmarshal(b, &items)
		}
		if err != nil {
			return model.Template{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		return model.Template{Items: items}, nil
	}

	var tpl model.Template
	if isYAML {
		err = yaml.Unmarshal(b, &tpl)
	} else {
		err = json.Unmarshal(b, &tpl)
	}
	if err != nil {
		return model.Template{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	tpl.ID = nil
	return tpl, nil
}
