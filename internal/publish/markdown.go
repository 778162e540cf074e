package publish

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"checklist-cli/internal/model"
	"checklist-cli/internal/outline"
	"checklist-cli/internal/revision"
)

type RenderOptions struct {
	// IncludeImages lists sample image links under each item.
	IncludeImages bool
	// IncludePhotoRequirements lists angle/distance/lighting/focus and photo counts.
	IncludePhotoRequirements bool
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{IncludeImages: true, IncludePhotoRequirements: true}
}

// RenderTemplateMarkdown renders a template as a numbered two-level checklist.
func RenderTemplateMarkdown(tpl model.Template, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(tpl.Name)
	if title == "" {
		title = "Untitled template"
	}
	writeLn("# " + title)
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	if tpl.ID != nil {
		writeLn("- ID: " + strconv.FormatInt(*tpl.ID, 10))
	}
	if v := strings.TrimSpace(tpl.Version); v != "" {
		writeLn("- Version: " + v)
	}
	if v := strings.TrimSpace(tpl.Category); v != "" {
		writeLn("- Category: " + v)
	}
	if v := strings.TrimSpace(tpl.PartNumber); v != "" {
		writeLn("- Part number: " + v)
	}
	if v := strings.TrimSpace(tpl.ProductType); v != "" {
		writeLn("- Product type: " + v)
	}
	writeLn("- Active: " + strconv.FormatBool(bool(tpl.IsActive)))
	if qd := tpl.QualityDocument; qd != nil {
		doc := strings.TrimSpace(qd.DocumentNumber)
		if qd.RevisionNumber > 0 {
			doc += fmt.Sprintf(" rev %d", qd.RevisionNumber)
		}
		writeLn("- Quality document: " + doc)
	}

	if desc := strings.TrimSpace(tpl.Description); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}

	writeLn("")
	writeLn("## Items")
	writeLn("")

	ed := outline.NewEditor(tpl.Items)
	items := ed.Items()
	if len(items) == 0 {
		writeLn("_No items._")
		return buf.String()
	}
	for i, it := range items {
		num, _ := ed.OutlineNumber(i)
		renderItem(&buf, it, num, opt)
	}
	return buf.String()
}

func renderItem(buf *bytes.Buffer, it model.ChecklistItem, num string, opt RenderOptions) {
	indent := ""
	if it.Level > 0 {
		indent = "  "
	}
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = "Untitled"
	}
	req := ""
	if it.IsRequired {
		req = " _(required)_"
	}
	fmt.Fprintf(buf, "%s- [ ] **%s** %s%s\n", indent, num, title, req)

	detail := indent + "  "
	if desc := strings.TrimSpace(it.Description); desc != "" {
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintf(buf, "%s%s\n", detail, strings.TrimRight(line, " "))
		}
	}
	if opt.IncludePhotoRequirements && it.PhotoRequirements != nil {
		if s := photoLine(*it.PhotoRequirements); s != "" {
			fmt.Fprintf(buf, "%s- Photo: %s\n", detail, s)
		}
	}
	if opt.IncludeImages {
		// Primary image first, then the rest in stored order.
		primary, ok := it.PrimaryImage()
		switch {
		case ok:
			imageLine(buf, detail, primary, true)
		case strings.TrimSpace(it.SampleImageURL) != "":
			imageLine(buf, detail, model.SampleImage{URL: strings.TrimSpace(it.SampleImageURL)}, true)
		}
		skipped := !ok
		for _, img := range it.SampleImages {
			if !skipped && img.URL == primary.URL && img.OrderIndex == primary.OrderIndex {
				skipped = true
				continue
			}
			imageLine(buf, detail, img, false)
		}
	}
	for _, l := range it.Links {
		title := strings.TrimSpace(l.Title)
		if title == "" {
			title = l.URL
		}
		fmt.Fprintf(buf, "%s- Link: [%s](%s)\n", detail, title, strings.TrimSpace(l.URL))
	}
}

func imageLine(buf *bytes.Buffer, indent string, img model.SampleImage, primary bool) {
	label := strings.TrimSpace(img.Label)
	if label == "" {
		label = string(img.ImageType)
	}
	if label == "" {
		label = "sample"
	}
	suffix := ""
	if primary {
		suffix = " (primary)"
	}
	fmt.Fprintf(buf, "%s- Image: [%s](%s)%s\n", indent, label, img.URL, suffix)
}

func photoLine(pr model.PhotoRequirements) string {
	var parts []string
	add := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, k+" "+v)
		}
	}
	add("angle", pr.Angle)
	add("distance", pr.Distance)
	add("lighting", pr.Lighting)
	add("focus", pr.Focus)
	switch {
	case pr.MinPhotos != nil && pr.MaxPhotos != nil:
		parts = append(parts, fmt.Sprintf("%d-%d photos", *pr.MinPhotos, *pr.MaxPhotos))
	case pr.MinPhotos != nil:
		parts = append(parts, fmt.Sprintf("at least %d photos", *pr.MinPhotos))
	case pr.MaxPhotos != nil:
		parts = append(parts, fmt.Sprintf("at most %d photos", *pr.MaxPhotos))
	}
	if pr.PictureRequired != nil && !bool(*pr.PictureRequired) {
		parts = append(parts, "picture optional")
	}
	return strings.Join(parts, ", ")
}

// RenderChangesMarkdown renders a change set as a review document.
func RenderChangesMarkdown(cs model.ChangeSet) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("## Changes")
	writeLn("")
	writeLn(revision.Summary(cs))
	if cs.Empty() {
		return buf.String()
	}

	if len(cs.FieldChanges) > 0 {
		writeLn("")
		writeLn("### Template fields")
		writeLn("")
		for _, c := range cs.FieldChanges {
			writeLn(fmt.Sprintf("- %s: %s → %s", revision.Label(c.Field), show(c.Old), show(c.New)))
		}
	}
	if len(cs.ItemsAdded) > 0 {
		writeLn("")
		writeLn("### Added")
		writeLn("")
		for _, r := range cs.ItemsAdded {
			writeLn(fmt.Sprintf("- %s (#%s)", orUntitled(r.Title), formatOrder(r.OrderIndex)))
		}
	}
	if len(cs.ItemsRemoved) > 0 {
		writeLn("")
		writeLn("### Removed")
		writeLn("")
		for _, r := range cs.ItemsRemoved {
			writeLn(fmt.Sprintf("- %s (#%s)", orUntitled(r.Title), formatOrder(r.OrderIndex)))
		}
	}
	if len(cs.ItemsModified) > 0 {
		writeLn("")
		writeLn("### Modified")
		writeLn("")
		for _, m := range cs.ItemsModified {
			writeLn(fmt.Sprintf("- %s (#%s)", orUntitled(m.Title), formatOrder(m.OrderIndex)))
			for _, c := range m.Changes {
				writeLn(fmt.Sprintf("  - %s: %s → %s", revision.Label(c.Field), show(c.Old), show(c.New)))
			}
		}
	}
	return buf.String()
}

// RenderRevisionMarkdown renders one revision record with its change set.
func RenderRevisionMarkdown(rev model.Revision) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Revision %d (v%s)\n\n", rev.RevisionNumber, rev.Version)
	fmt.Fprintf(&buf, "- Template: %d\n", rev.TemplateID)
	if rev.CreatedBy != "" {
		fmt.Fprintf(&buf, "- Author: %s\n", rev.CreatedBy)
	}
	fmt.Fprintf(&buf, "- Created: %s\n", rev.CreatedAt.UTC().Format(time.RFC3339))
	if d := strings.TrimSpace(rev.Description); d != "" {
		fmt.Fprintf(&buf, "\n%s\n", d)
	}
	buf.WriteString("\n")
	buf.WriteString(RenderChangesMarkdown(rev.Changes))
	return buf.String()
}

// show formats a change value for a one-line diff.
func show(v any) string {
	switch x := v.(type) {
	case nil:
		return "_(empty)_"
	case string:
		return fmt.Sprintf("%q", x)
	case float64:
		return formatOrder(x)
	case bool, int:
		return fmt.Sprint(x)
	default:
		return "_(updated)_"
	}
}

func formatOrder(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orUntitled(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Untitled"
	}
	return strings.TrimSpace(s)
}
