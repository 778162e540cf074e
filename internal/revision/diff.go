package revision

import (
	"strings"

	"checklist-cli/internal/model"
	"checklist-cli/internal/outline"
)

// Metadata fields compared between snapshots, in reporting order.
var metadataFields = []string{"name", "description", "part_number", "product_type", "category", "is_active"}

// Item fields compared for matched items, in reporting order.
var itemFields = []string{
	"title",
	"description",
	"is_required",
	"sample_image_url",
	"sample_images",
	"sample_videos",
	"links",
	"photo_requirements",
	"submission_type",
	"submission_time_seconds",
	"order_index",
	"level",
	"parent_id",
}

// Diff compares the last persisted snapshot with an edited one. Items are matched by id only.
// Neither input is modified.
func Diff(original, candidate model.Template) model.ChangeSet {
	cs := model.ChangeSet{
		FieldChanges:  []model.FieldChange{},
		ItemsAdded:    []model.ItemRef{},
		ItemsRemoved:  []model.ItemRef{},
		ItemsModified: []model.ItemChange{},
	}

	for _, f := range metadataFields {
		oldV := normalizeField(metadataValue(original, f))
		newV := normalizeField(metadataValue(candidate, f))
		if oldV != newV {
			cs.FieldChanges = append(cs.FieldChanges, model.FieldChange{Field: f, Old: oldV, New: newV})
		}
	}

	oldItems := original.Items
	if outline.IsNested(oldItems) {
		oldItems = outline.Flatten(oldItems)
	}
	newItems := candidate.Items
	if outline.IsNested(newItems) {
		newItems = outline.Flatten(newItems)
	}
	if identityMissing(oldItems, newItems) {
		return cs
	}

	byID := make(map[int64]int, len(newItems))
	for i, it := range newItems {
		if it.ID == nil {
			continue
		}
		if _, dup := byID[*it.ID]; !dup {
			byID[*it.ID] = i
		}
	}

	consumed := make(map[int]bool, len(newItems))
	for _, oldIt := range oldItems {
		if oldIt.ID == nil {
			continue
		}
		i, ok := byID[*oldIt.ID]
		if !ok || consumed[i] {
			cs.ItemsRemoved = append(cs.ItemsRemoved, ref(oldIt))
			continue
		}
		consumed[i] = true
		newIt := newItems[i]
		if changes := compareItems(oldIt, newIt); len(changes) > 0 {
			cs.ItemsModified = append(cs.ItemsModified, model.ItemChange{
				ID:         copyID(newIt.ID),
				Title:      newIt.Title,
				OrderIndex: newIt.OrderIndex,
				Changes:    changes,
			})
		}
	}

	for i, it := range newItems {
		if !consumed[i] {
			cs.ItemsAdded = append(cs.ItemsAdded, ref(it))
		}
	}
	return cs
}

// identityMissing reports a candidate whose items all lack ids while the original has identified
// items. Matching would report every item as removed and re-added, so item diffing is skipped.
func identityMissing(oldItems, newItems []model.ChecklistItem) bool {
	if len(newItems) == 0 {
		return false
	}
	for _, it := range newItems {
		if it.ID != nil {
			return false
		}
	}
	for _, it := range oldItems {
		if it.ID != nil {
			return true
		}
	}
	return false
}

func compareItems(oldIt, newIt model.ChecklistItem) []model.FieldChange {
	var out []model.FieldChange
	for _, f := range itemFields {
		if isEmptyItemField(oldIt, f) && isEmptyItemField(newIt, f) {
			continue
		}
		switch f {
		case "sample_images":
			a, b := normalizeImages(oldIt.SampleImages), normalizeImages(newIt.SampleImages)
			if !sameCanonical(a, b) {
				out = append(out, model.FieldChange{Field: f, Old: a, New: b})
			}
		case "sample_videos":
			a, b := normalizeImages(model.SampleImages(oldIt.SampleVideos)), normalizeImages(model.SampleImages(newIt.SampleVideos))
			if !sameCanonical(a, b) {
				out = append(out, model.FieldChange{Field: f, Old: a, New: b})
			}
		case "links":
			a, b := normalizeLinks(oldIt.Links), normalizeLinks(newIt.Links)
			if !sameCanonical(a, b) {
				out = append(out, model.FieldChange{Field: f, Old: a, New: b})
			}
		case "photo_requirements":
			a, b := normalizePhotoRequirements(oldIt.PhotoRequirements), normalizePhotoRequirements(newIt.PhotoRequirements)
			if !sameCanonical(a, b) {
				out = append(out, model.FieldChange{Field: f, Old: a, New: b})
			}
		default:
			a, b := itemValue(oldIt, f), itemValue(newIt, f)
			if a != b {
				out = append(out, model.FieldChange{Field: f, Old: a, New: b})
			}
		}
	}
	return out
}

func isEmptyItemField(it model.ChecklistItem, f string) bool {
	switch f {
	case "sample_images":
		return len(it.SampleImages) == 0
	case "sample_videos":
		return len(it.SampleVideos) == 0
	case "links":
		return len(it.Links) == 0
	case "photo_requirements":
		return it.PhotoRequirements == nil
	case "parent_id":
		return it.ParentID == nil
	case "submission_time_seconds":
		return it.SubmissionTimeSeconds == nil
	case "title", "description", "sample_image_url", "submission_type":
		s, _ := itemValue(it, f).(string)
		return strings.TrimSpace(s) == ""
	default:
		return false
	}
}

// itemValue returns a comparable scalar for f. A nil pointer field stays an untyped nil.
func itemValue(it model.ChecklistItem, f string) any {
	switch f {
	case "title":
		return it.Title
	case "description":
		return it.Description
	case "is_required":
		return bool(it.IsRequired)
	case "sample_image_url":
		return it.SampleImageURL
	case "submission_type":
		return it.SubmissionType
	case "submission_time_seconds":
		if it.SubmissionTimeSeconds == nil {
			return nil
		}
		return *it.SubmissionTimeSeconds
	case "order_index":
		return it.OrderIndex
	case "level":
		return it.Level
	case "parent_id":
		if it.ParentID == nil {
			return nil
		}
		return *it.ParentID
	}
	return nil
}

func metadataValue(t model.Template, f string) any {
	switch f {
	case "name":
		return t.Name
	case "description":
		return t.Description
	case "part_number":
		return t.PartNumber
	case "product_type":
		return t.ProductType
	case "category":
		return t.Category
	case "is_active":
		return t.IsActive
	}
	return nil
}

func ref(it model.ChecklistItem) model.ItemRef {
	return model.ItemRef{ID: copyID(it.ID), Title: it.Title, OrderIndex: it.OrderIndex}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
