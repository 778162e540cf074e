package model

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Flag is a boolean that also accepts the 0/1 and "true"/"1" spellings found in persisted records.
type Flag bool

func parseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "", "null", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %q", s)
	}
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		s = raw
	}
	v, err := parseFlag(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f *Flag) UnmarshalYAML(n *yaml.Node) error {
	v, err := parseFlag(n.Value)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// SampleImages is always a list. Legacy records that stored a single image object decode as a
// one-element list.
type SampleImages []SampleImage

func (s SampleImages) Clone() SampleImages {
	if s == nil {
		return nil
	}
	out := make(SampleImages, len(s))
	for i, img := range s {
		if img.ID != nil {
			id := *img.ID
			img.ID = &id
		}
		out[i] = img
	}
	return out
}

func (s SampleImages) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]SampleImage(s))
}

func (s *SampleImages) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = nil
		return nil
	case b[0] == '{':
		var one SampleImage
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = SampleImages{one}
		return nil
	default:
		var many []SampleImage
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*s = many
		return nil
	}
}

func (s *SampleImages) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		var one SampleImage
		if err := n.Decode(&one); err != nil {
			return err
		}
		*s = SampleImages{one}
		return nil
	case yaml.SequenceNode:
		var many []SampleImage
		if err := n.Decode(&many); err != nil {
			return err
		}
		*s = many
		return nil
	default:
		*s = nil
		return nil
	}
}
