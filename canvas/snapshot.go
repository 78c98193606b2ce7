package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// snapshotVersion identifies the snapshot schema.
const snapshotVersion = 1

// Snapshot is a serialized scene: background, page size and every object in
// stacking order. Encoding is deterministic, so two captures of the same
// scene are byte-equal.
type Snapshot []byte

// Equal reports whether two snapshots encode the same scene.
func (s Snapshot) Equal(o Snapshot) bool {
	return bytes.Equal(s, o)
}

// ObjectCount decodes the snapshot and returns how many objects it holds.
func (s Snapshot) ObjectCount() (int, error) {
	doc, err := decodeSnapshot(s)
	if err != nil {
		return 0, err
	}
	return len(doc.Objects), nil
}

type sceneDoc struct {
	Version    int       `json:"version"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Background string    `json:"background"`
	Objects    []element `json:"objects"`
}

type element struct {
	Type     string  `json:"type"`
	ID       string  `json:"id"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Fill     string  `json:"fill,omitempty"`
	Text     string  `json:"text,omitempty"`
	Src      string  `json:"src,omitempty"`
	ScaleX   float64 `json:"scaleX,omitempty"`
	ScaleY   float64 `json:"scaleY,omitempty"`
}

func encodeScene(width, height int, background string, objects []Object) (Snapshot, error) {
	doc := sceneDoc{
		Version:    snapshotVersion,
		Width:      width,
		Height:     height,
		Background: background,
		Objects:    make([]element, 0, len(objects)),
	}
	for _, o := range objects {
		switch v := o.(type) {
		case *Textbox:
			doc.Objects = append(doc.Objects, element{
				Type:     KindTextbox,
				ID:       v.id,
				Left:     v.Left,
				Top:      v.Top,
				Width:    v.Width,
				FontSize: v.FontSize,
				Fill:     v.Fill,
				Text:     v.Text,
			})
		case *Image:
			w, h := v.Size()
			doc.Objects = append(doc.Objects, element{
				Type:   KindImage,
				ID:     v.id,
				Left:   v.Left,
				Top:    v.Top,
				Width:  float64(w),
				Height: float64(h),
				Src:    v.Src,
				ScaleX: v.ScaleX,
				ScaleY: v.ScaleY,
			})
		default:
			return nil, fmt.Errorf("canvas: cannot serialize object kind %q", o.Kind())
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("canvas: encoding snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot parses and validates a snapshot without loading images.
func decodeSnapshot(s Snapshot) (*sceneDoc, error) {
	var doc sceneDoc
	if err := json.Unmarshal(s, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedSnapshot, doc.Version)
	}
	if _, err := parseColor(doc.Background); err != nil {
		return nil, fmt.Errorf("%w: background: %v", ErrMalformedSnapshot, err)
	}
	seen := make(map[string]bool, len(doc.Objects))
	for i, el := range doc.Objects {
		if el.ID == "" || seen[el.ID] {
			return nil, fmt.Errorf("%w: object %d: missing or duplicate id", ErrMalformedSnapshot, i)
		}
		seen[el.ID] = true
		switch el.Type {
		case KindTextbox:
			if _, err := parseColor(el.Fill); err != nil {
				return nil, fmt.Errorf("%w: object %d: fill: %v", ErrMalformedSnapshot, i, err)
			}
		case KindImage:
			if el.Src == "" {
				return nil, fmt.Errorf("%w: object %d: image without src", ErrMalformedSnapshot, i)
			}
		default:
			return nil, fmt.Errorf("%w: object %d: unknown type %q", ErrMalformedSnapshot, i, el.Type)
		}
	}
	return &doc, nil
}
