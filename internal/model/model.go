package model

import "time"

type ImageType string

const (
	ImageTypeSample        ImageType = "sample"
	ImageTypeReference     ImageType = "reference"
	ImageTypeDefectExample ImageType = "defect_example"
	ImageTypeDiagram       ImageType = "diagram"
)

type SampleImage struct {
	ID          *int64    `json:"id,omitempty" yaml:"id,omitempty"`
	URL         string    `json:"url" yaml:"url"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string    `json:"type,omitempty" yaml:"type,omitempty"`
	ImageType   ImageType `json:"image_type,omitempty" yaml:"image_type,omitempty"`
	IsPrimary   Flag      `json:"is_primary" yaml:"is_primary"`
	OrderIndex  int       `json:"order_index" yaml:"order_index"`

	// Upload progress; only meaningful while an editor session is open.
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}

type PhotoRequirements struct {
	Angle           string `json:"angle" yaml:"angle"`
	Distance        string `json:"distance" yaml:"distance"`
	Lighting        string `json:"lighting" yaml:"lighting"`
	Focus           string `json:"focus" yaml:"focus"`
	MinPhotos       *int   `json:"min_photos" yaml:"min_photos"`
	MaxPhotos       *int   `json:"max_photos" yaml:"max_photos"`
	PictureRequired *Flag  `json:"picture_required,omitempty" yaml:"picture_required,omitempty"`
}

type ItemLink struct {
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type ChecklistItem struct {
	ID          *int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	OrderIndex  float64 `json:"order_index" yaml:"order_index"`
	Level       int     `json:"level" yaml:"level"`

	// ParentID is the parent's current OrderIndex (not a stable id). nil for parents.
	ParentID *float64 `json:"parent_id" yaml:"parent_id"`

	IsRequired        Flag               `json:"is_required" yaml:"is_required"`
	PhotoRequirements *PhotoRequirements `json:"photo_requirements,omitempty" yaml:"photo_requirements,omitempty"`
	SampleImageURL    string             `json:"sample_image_url,omitempty" yaml:"sample_image_url,omitempty"`
	SampleImages      SampleImages       `json:"sample_images" yaml:"sample_images"`

	// Carried through storage and compared on diff; the editor does not interpret them.
	SampleVideos          []SampleImage `json:"sample_videos,omitempty" yaml:"sample_videos,omitempty"`
	Links                 []ItemLink    `json:"links,omitempty" yaml:"links,omitempty"`
	SubmissionType        string        `json:"submission_type,omitempty" yaml:"submission_type,omitempty"`
	SubmissionTimeSeconds *int          `json:"submission_time_seconds,omitempty" yaml:"submission_time_seconds,omitempty"`

	// Children is only populated on nested input; flattening clears it.
	Children []ChecklistItem `json:"children,omitempty" yaml:"children,omitempty"`
}

func (it ChecklistItem) IsParent() bool { return it.Level == 0 }

// Clone returns a deep copy; editing the copy never aliases the original's slices or pointers.
func (it ChecklistItem) Clone() ChecklistItem {
	out := it
	if it.ID != nil {
		id := *it.ID
		out.ID = &id
	}
	if it.ParentID != nil {
		p := *it.ParentID
		out.ParentID = &p
	}
	if it.PhotoRequirements != nil {
		pr := it.PhotoRequirements.Clone()
		out.PhotoRequirements = &pr
	}
	out.SampleImages = it.SampleImages.Clone()
	if it.SampleVideos != nil {
		out.SampleVideos = []SampleImage(SampleImages(it.SampleVideos).Clone())
	}
	if it.Links != nil {
		out.Links = append([]ItemLink(nil), it.Links...)
	}
	if it.SubmissionTimeSeconds != nil {
		n := *it.SubmissionTimeSeconds
		out.SubmissionTimeSeconds = &n
	}
	if it.Children != nil {
		out.Children = make([]ChecklistItem, len(it.Children))
		for i := range it.Children {
			out.Children[i] = it.Children[i].Clone()
		}
	}
	return out
}

// PrimaryImage returns the image flagged primary, falling back to the first image.
func (it ChecklistItem) PrimaryImage() (SampleImage, bool) {
	for _, img := range it.SampleImages {
		if bool(img.IsPrimary) {
			return img, true
		}
	}
	if len(it.SampleImages) > 0 {
		return it.SampleImages[0], true
	}
	return SampleImage{}, false
}

func (pr PhotoRequirements) Clone() PhotoRequirements {
	out := pr
	if pr.MinPhotos != nil {
		n := *pr.MinPhotos
		out.MinPhotos = &n
	}
	if pr.MaxPhotos != nil {
		n := *pr.MaxPhotos
		out.MaxPhotos = &n
	}
	if pr.PictureRequired != nil {
		f := *pr.PictureRequired
		out.PictureRequired = &f
	}
	return out
}

type QualityDocumentMetadata struct {
	DocumentID     int64  `json:"document_id" yaml:"document_id"`
	DocumentNumber string `json:"document_number" yaml:"document_number"`
	RevisionID     int64  `json:"revision_id,omitempty" yaml:"revision_id,omitempty"`
	RevisionNumber int    `json:"revision_number,omitempty" yaml:"revision_number,omitempty"`
	Title          string `json:"title,omitempty" yaml:"title,omitempty"`
}

type Template struct {
	ID          *int64          `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string          `json:"name" yaml:"name"`
	Category    string          `json:"category" yaml:"category"`
	Description string          `json:"description" yaml:"description"`
	PartNumber  string          `json:"part_number" yaml:"part_number"`
	ProductType string          `json:"product_type" yaml:"product_type"`
	Version     string          `json:"version" yaml:"version"`
	IsActive    Flag            `json:"is_active" yaml:"is_active"`
	Items       []ChecklistItem `json:"items" yaml:"items"`

	QualityDocument *QualityDocumentMetadata `json:"quality_document_metadata,omitempty" yaml:"quality_document_metadata,omitempty"`
}

func (t Template) Clone() Template {
	out := t
	if t.ID != nil {
		id := *t.ID
		out.ID = &id
	}
	if t.Items != nil {
		out.Items = make([]ChecklistItem, len(t.Items))
		for i := range t.Items {
			out.Items[i] = t.Items[i].Clone()
		}
	}
	if t.QualityDocument != nil {
		qd := *t.QualityDocument
		out.QualityDocument = &qd
	}
	return out
}

type FieldChange struct {
	Field string `json:"field" yaml:"field"`
	Old   any    `json:"old" yaml:"old"`
	New   any    `json:"new" yaml:"new"`
}

// ItemRef is the human-readable reference kept for added/removed items.
type ItemRef struct {
	ID         *int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string  `json:"title" yaml:"title"`
	OrderIndex float64 `json:"order_index" yaml:"order_index"`
}

type ItemChange struct {
	ID         *int64        `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string        `json:"title" yaml:"title"`
	OrderIndex float64       `json:"order_index" yaml:"order_index"`
	Changes    []FieldChange `json:"changes" yaml:"changes"`
}

type ChangeSet struct {
	FieldChanges  []FieldChange `json:"field_changes" yaml:"field_changes"`
	ItemsAdded    []ItemRef     `json:"items_added" yaml:"items_added"`
	ItemsRemoved  []ItemRef     `json:"items_removed" yaml:"items_removed"`
	ItemsModified []ItemChange  `json:"items_modified" yaml:"items_modified"`
}

func (cs ChangeSet) Empty() bool {
	return len(cs.FieldChanges) == 0 && len(cs.ItemsAdded) == 0 && len(cs.ItemsRemoved) == 0 && len(cs.ItemsModified) == 0
}

// Revision is the document-control record written when a template is published.
type Revision struct {
	ID             int64     `json:"id" yaml:"id"`
	TemplateID     int64     `json:"template_id" yaml:"template_id"`
	RevisionNumber int       `json:"revision_number" yaml:"revision_number"`
	Version        string    `json:"version" yaml:"version"`
	Description    string    `json:"description" yaml:"description"`
	ChangesSummary string    `json:"changes_summary" yaml:"changes_summary"`
	ItemsAdded     int       `json:"items_added" yaml:"items_added"`
	ItemsRemoved   int       `json:"items_removed" yaml:"items_removed"`
	ItemsModified  int       `json:"items_modified" yaml:"items_modified"`
	Changes        ChangeSet `json:"changes" yaml:"changes"`
	Snapshot       Template  `json:"snapshot" yaml:"snapshot"`
	CreatedBy      string    `json:"created_by" yaml:"created_by"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

type Event struct {
	ID       string    `json:"id" yaml:"id"`
	TS       time.Time `json:"ts" yaml:"ts"`
	Author   string    `json:"author" yaml:"author"`
	Type     string    `json:"type" yaml:"type"`
	EntityID string    `json:"entity_id" yaml:"entity_id"`
	Payload  any       `json:"payload" yaml:"payload"`
}
