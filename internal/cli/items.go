package cli

import (
	"errors"
	"strings"

	"checklist-cli/internal/model"
	"checklist-cli/internal/outline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// itemRow is the listing view of one draft item. Index is what the mutating
// subcommands take.
type itemRow struct {
	Index      int      `json:"index" yaml:"index"`
	Number     string   `json:"number" yaml:"number"`
	ID         *int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string   `json:"title" yaml:"title"`
	OrderIndex float64  `json:"order_index" yaml:"order_index"`
	Level      int      `json:"level" yaml:"level"`
	ParentID   *float64 `json:"parent_id" yaml:"parent_id"`
	IsRequired bool     `json:"is_required" yaml:"is_required"`
}

type itemsResult struct {
	TemplateID int64     `json:"template_id" yaml:"template_id"`
	Index      *int      `json:"index,omitempty" yaml:"index,omitempty"`
	Items      []itemRow `json:"items" yaml:"items"`
}

func rows(ed *outline.Editor) []itemRow {
	out := make([]itemRow, 0, ed.Len())
	for i, it := range ed.Items() {
		num, _ := ed.OutlineNumber(i)
		out = append(out, itemRow{
			Index:      i,
			Number:     num,
			ID:         it.ID,
			Title:      it.Title,
			OrderIndex: it.OrderIndex,
			Level:      it.Level,
			ParentID:   it.ParentID,
			IsRequired: bool(it.IsRequired),
		})
	}
	return out
}

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Edit the items of a template's working draft",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <template-id>",
		Short: "List draft items with their index and outline number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTemplateID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			draft, err := app.dataStore().LoadDraft(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			ed := outline.NewEditor(draft.Items)
			return writeOut(cmd, app, map[string]any{"data": itemsResult{TemplateID: id, Items: rows(ed)}})
		},
	})

	cmd.AddCommand(newItemAddCmd(app, "add", "<template-id>", "Append a new parent item", func(ed *outline.Editor, _ int, it model.ChecklistItem) (int, error) {
		return ed.Add(it), nil
	}))
	cmd.AddCommand(newItemAddCmd(app, "add-sub", "<template-id> <index>", "Add a sub-item at the end of the item's group", (*outline.Editor).AddSubItem))
	cmd.AddCommand(newItemAddCmd(app, "add-above", "<template-id> <index>", "Insert an item above the given one, at the same level", (*outline.Editor).AddAbove))
	cmd.AddCommand(newItemAddCmd(app, "add-below", "<template-id> <index>", "Insert an item below the given one (after its sub-items)", (*outline.Editor).AddBelow))

	cmd.AddCommand(newItemUpdateCmd(app))

	cmd.AddCommand(newItemOpCmd(app, "duplicate", "Copy an item (and its sub-items) below itself", func(ed *outline.Editor, i int) (int, error) {
		return ed.Duplicate(i)
	}))
	cmd.AddCommand(newItemOpCmd(app, "remove", "Remove an item; its sub-items are removed with it", func(ed *outline.Editor, i int) (int, error) {
		return i, ed.Remove(i)
	}))
	cmd.AddCommand(newItemOpCmd(app, "promote", "Turn a sub-item into a top-level item", func(ed *outline.Editor, i int) (int, error) {
		return i, ed.Promote(i)
	}))
	cmd.AddCommand(newItemOpCmd(app, "demote", "Make a top-level item a sub-item of the item above", func(ed *outline.Editor, i int) (int, error) {
		return i, ed.Demote(i)
	}))
	cmd.AddCommand(newItemOpCmd(app, "up", "Move an item one row up", func(ed *outline.Editor, i int) (int, error) {
		return i - 1, ed.MoveUp(i)
	}))
	cmd.AddCommand(newItemOpCmd(app, "down", "Move an item one row down", func(ed *outline.Editor, i int) (int, error) {
		return i + 1, ed.MoveDown(i)
	}))

	cmd.AddCommand(&cobra.Command{
		Use:   "move <template-id> <from> <to>",
		Short: "Move an item to another row; its level follows the new neighbours",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			to, err := parseIndex(args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			return mutateDraft(cmd, app, args[0], "item.move", func(ed *outline.Editor) (int, error) {
				return to, ed.Move(from, to)
			})
		},
	})

	return cmd
}

type itemFlags struct {
	title       string
	description string
	required    bool
	imageURL    string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Item title")
	cmd.Flags().StringVar(&f.description, "description", "", "Item description")
	cmd.Flags().BoolVar(&f.required, "required", false, "Mark the item required")
	cmd.Flags().StringVar(&f.imageURL, "image", "", "Sample image URL")
}

func (f *itemFlags) item() model.ChecklistItem {
	it := model.ChecklistItem{
		Title:       strings.TrimSpace(f.title),
		Description: f.description,
		IsRequired:  model.Flag(f.required),
	}
	if u := strings.TrimSpace(f.imageURL); u != "" {
		it.SampleImages = model.SampleImages{{URL: u, ImageType: model.ImageTypeSample, IsPrimary: true}}
	}
	return it
}

func newItemAddCmd(app *App, use, argsUse, short string, add func(*outline.Editor, int, model.ChecklistItem) (int, error)) *cobra.Command {
	var f itemFlags
	nargs := 1 + strings.Count(argsUse, " ")

	cmd := &cobra.Command{
		Use:   use + " " + argsUse,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := 0
			if nargs > 1 {
				i, err := parseIndex(args[1])
				if err != nil {
					return writeErr(cmd, err)
				}
				at = i
			}
			return mutateDraft(cmd, app, args[0], "item."+use, func(ed *outline.Editor) (int, error) {
				return add(ed, at, f.item())
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newItemUpdateCmd(app *App) *cobra.Command {
	var f itemFlags

	cmd := &cobra.Command{
		Use:   "update <template-id> <index>",
		Short: "Edit an item's fields without changing its position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			changed := cmd.Flags().Changed
			if !changed("title") && !changed("description") && !changed("required") && !changed("image") {
				return writeErr(cmd, errors.New("nothing to update (use --title, --description, --required or --image)"))
			}
			return mutateDraft(cmd, app, args[0], "item.update", func(ed *outline.Editor) (int, error) {
				return i, ed.Update(i, func(it *model.ChecklistItem) {
					if changed("title") {
						it.Title = strings.TrimSpace(f.title)
					}
					if changed("description") {
						it.Description = f.description
					}
					if changed("required") {
						it.IsRequired = model.Flag(f.required)
					}
					if changed("image") {
						it.SampleImages = f.item().SampleImages
					}
				})
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newItemOpCmd(app *App, use, short string, op func(*outline.Editor, int) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <template-id> <index>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return mutateDraft(cmd, app, args[0], "item."+use, func(ed *outline.Editor) (int, error) {
				return op(ed, i)
			})
		},
	}
}

// mutateDraft loads the working draft, applies fn and saves the result through the autosave queue.
func mutateDraft(cmd *cobra.Command, app *App, idArg, eventType string, fn func(*outline.Editor) (int, error)) error {
	id, err := parseTemplateID(idArg)
	if err != nil {
		return writeErr(cmd, err)
	}
	ctx := cmd.Context()
	s := app.dataStore()
	unlock, err := s.LockTemplate(ctx, id)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = unlock() }()

	draft, err := s.LoadDraft(ctx, id)
	if err != nil {
		return writeErr(cmd, err)
	}

	ed := outline.NewEditor(draft.Items, outline.WithLogger(app.logger()))
	at, err := fn(ed)
	if err != nil {
		return writeErr(cmd, err)
	}
	draft.Items = ed.Items()

	saved, err := app.saveDraft(ctx, s, draft)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.logger().Debug("draft saved", zap.String("op", eventType), zap.Int64("template_id", id), zap.Int("items", len(saved.Items)))
	app.recordEvent(ctx, s, eventType, id, map[string]any{"index": at})

	out := outline.NewEditor(saved.Items)
	res := itemsResult{TemplateID: id, Items: rows(out)}
	if at >= 0 && at < out.Len() {
		res.Index = &at
	}
	return writeOut(cmd, app, map[string]any{"data": res})
}
