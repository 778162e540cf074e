package revision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"checklist-cli/internal/model"
)

const (
	defaultImageKind = "photo"
	defaultImageType = model.ImageTypeSample
)

// image is the comparable part of a sample image. Upload status and throwaway ids are dropped.
type image struct {
	URL         string          `json:"url" yaml:"url"`
	Label       string          `json:"label" yaml:"label"`
	Description string          `json:"description" yaml:"description"`
	Type        string          `json:"type" yaml:"type"`
	ImageType   model.ImageType `json:"image_type" yaml:"image_type"`
	IsPrimary   bool            `json:"is_primary" yaml:"is_primary"`
	OrderIndex  int             `json:"order_index" yaml:"order_index"`
}

type photoRequirements struct {
	Angle           string `json:"angle" yaml:"angle"`
	Distance        string `json:"distance" yaml:"distance"`
	Lighting        string `json:"lighting" yaml:"lighting"`
	Focus           string `json:"focus" yaml:"focus"`
	MinPhotos       *int   `json:"min_photos" yaml:"min_photos"`
	MaxPhotos       *int   `json:"max_photos" yaml:"max_photos"`
	PictureRequired bool   `json:"picture_required" yaml:"picture_required"`
}

type link struct {
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
}

func normalizeLinks(links []model.ItemLink) []link {
	if len(links) == 0 {
		return nil
	}
	out := make([]link, 0, len(links))
	for _, l := range links {
		out = append(out, link{
			Title:       strings.TrimSpace(l.Title),
			URL:         strings.TrimSpace(l.URL),
			Description: strings.TrimSpace(l.Description),
		})
	}
	return out
}

func normalizeImages(imgs model.SampleImages) []image {
	if len(imgs) == 0 {
		return nil
	}
	out := make([]image, 0, len(imgs))
	for _, img := range imgs {
		n := image{
			URL:         img.URL,
			Label:       img.Label,
			Description: img.Description,
			Type:        img.Type,
			ImageType:   img.ImageType,
			IsPrimary:   bool(img.IsPrimary),
			OrderIndex:  img.OrderIndex,
		}
		if n.Type == "" {
			n.Type = defaultImageKind
		}
		if n.ImageType == "" {
			n.ImageType = defaultImageType
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// normalizePhotoRequirements fills defaults so a missing record and an all-default record compare
// equal. picture_required defaults to true.
func normalizePhotoRequirements(pr *model.PhotoRequirements) photoRequirements {
	if pr == nil {
		return photoRequirements{PictureRequired: true}
	}
	out := photoRequirements{
		Angle:           strings.TrimSpace(pr.Angle),
		Distance:        strings.TrimSpace(pr.Distance),
		Lighting:        strings.TrimSpace(pr.Lighting),
		Focus:           strings.TrimSpace(pr.Focus),
		PictureRequired: true,
	}
	if pr.MinPhotos != nil {
		n := *pr.MinPhotos
		out.MinPhotos = &n
	}
	if pr.MaxPhotos != nil {
		n := *pr.MaxPhotos
		out.MaxPhotos = &n
	}
	if pr.PictureRequired != nil {
		out.PictureRequired = bool(*pr.PictureRequired)
	}
	return out
}

// normalizeField trims strings (blank becomes nil); every other value passes through.
func normalizeField(v any) any {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		return s
	case model.Flag:
		return bool(x)
	default:
		return v
	}
}

// canonical serializes v with object keys sorted at every depth, so field order and struct layout
// never affect equality.
func canonical(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return string(b)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func sameCanonical(a, b any) bool { return canonical(a) == canonical(b) }
