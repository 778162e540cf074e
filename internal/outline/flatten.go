package outline

import "checklist-cli/internal/model"

// Flatten turns a nested parent/children shape into one ordered list.
//
// Each top-level item is appended, immediately followed by its children (and any deeper
// descendants, in pre-order) tagged level=1 and parent_id=<parent order_index>. Top-level items
// keep their own level/parent_id, so an already flat list passes through unchanged.
// The input is not modified.
func Flatten(nested []model.ChecklistItem) []model.ChecklistItem {
	out := make([]model.ChecklistItem, 0, len(nested))
	for _, it := range nested {
		parent := it.Clone()
		children := parent.Children
		parent.Children = nil
		out = append(out, parent)

		pid := parent.OrderIndex
		var walk func(xs []model.ChecklistItem)
		walk = func(xs []model.ChecklistItem) {
			for _, x := range xs {
				grand := x.Children
				x.Children = nil
				x.Level = 1
				p := pid
				x.ParentID = &p
				out = append(out, x)
				if len(grand) > 0 {
					walk(grand)
				}
			}
		}
		walk(children)
	}
	return out
}

// Nest groups a flat list back into parents with children. A child with no preceding parent is
// promoted to the top level.
func Nest(flat []model.ChecklistItem) []model.ChecklistItem {
	var out []model.ChecklistItem
	for _, it := range flat {
		x := it.Clone()
		x.Children = nil
		if x.Level == 0 || len(out) == 0 {
			out = append(out, x)
			continue
		}
		last := &out[len(out)-1]
		last.Children = append(last.Children, x)
	}
	return out
}

// IsNested reports whether any item carries a children array.
func IsNested(items []model.ChecklistItem) bool {
	for _, it := range items {
		if len(it.Children) > 0 {
			return true
		}
	}
	return false
}
