package revision

import (
	"fmt"
	"strconv"
	"strings"

	"checklist-cli/internal/model"
)

var fieldLabels = map[string]string{
	"name":                    "Template Name",
	"description":             "Description",
	"part_number":             "Part Number",
	"product_type":            "Product Type",
	"category":                "Category",
	"is_active":               "Active Status",
	"title":                   "Title",
	"is_required":             "Required",
	"sample_image_url":        "Sample Image",
	"sample_images":           "Sample & Reference Images",
	"sample_videos":           "Sample Videos",
	"links":                   "Links",
	"photo_requirements":      "Photo Requirements",
	"submission_type":         "Submission Type",
	"submission_time_seconds": "Submission Time Limit",
	"order_index":             "Position",
	"level":                   "Hierarchy Level",
	"parent_id":               "Parent Item",
}

// Label is the human-readable name of a compared field.
func Label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// Summary renders the change counts as one sentence.
func Summary(cs model.ChangeSet) string {
	return fmt.Sprintf("%d field change(s), %d item(s) added, %d item(s) removed, %d item(s) modified",
		len(cs.FieldChanges), len(cs.ItemsAdded), len(cs.ItemsRemoved), len(cs.ItemsModified))
}

// Description returns the caller's text, or the generated summary when it is blank.
func Description(userText string, cs model.ChangeSet) string {
	if s := strings.TrimSpace(userText); s != "" {
		return s
	}
	return Summary(cs)
}

// Details lists what changed, one line per category, plus one line per modified item.
// An empty change set yields "".
func Details(cs model.ChangeSet) string {
	var lines []string

	if len(cs.FieldChanges) > 0 {
		names := make([]string, 0, len(cs.FieldChanges))
		for _, c := range cs.FieldChanges {
			names = append(names, Label(c.Field))
		}
		lines = append(lines, "Template fields updated: "+strings.Join(names, ", "))
	}
	if len(cs.ItemsAdded) > 0 {
		lines = append(lines, "Items added: "+titles(cs.ItemsAdded))
	}
	if len(cs.ItemsRemoved) > 0 {
		lines = append(lines, "Items removed: "+titles(cs.ItemsRemoved))
	}

	// Entries sharing title and position are merged.
	type key struct {
		title string
		order float64
	}
	var order []key
	fields := map[key][]string{}
	for _, m := range cs.ItemsModified {
		k := key{title: orUntitled(m.Title), order: m.OrderIndex}
		if _, seen := fields[k]; !seen {
			order = append(order, k)
			fields[k] = nil
		}
		for _, c := range m.Changes {
			fields[k] = appendUnique(fields[k], Label(c.Field))
		}
	}
	for _, k := range order {
		if len(fields[k]) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("Item %q (#%s): %s",
			k.title, strconv.FormatFloat(k.order, 'f', -1, 64), strings.Join(fields[k], ", ")))
	}

	return strings.Join(lines, "\n")
}

func titles(refs []model.ItemRef) string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, orUntitled(r.Title))
	}
	return strings.Join(out, ", ")
}

func orUntitled(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Untitled"
	}
	return s
}

func appendUnique(xs []string, s string) []string {
	for _, x := range xs {
		if x == s {
			return xs
		}
	}
	return append(xs, s)
}
