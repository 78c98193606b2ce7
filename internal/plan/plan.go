// Package plan reads YAML planner descriptions and replays them through an
// editor.
//
// A plan lists pages in order; each page holds text boxes and stickers:
//
//	pages:
//	  - texts:
//	      - text: Monday
//	        dx: 0
//	        dy: 40
//	    stickers:
//	      - src: stickers/sun.png
//	        dx: 300
//	  - texts:
//	      - text: Tuesday
//	      - text: draft
//	        delete: true
//
// An item marked delete is placed and then removed again, which leaves it out
// of the page.
package plan

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	planner "github.com/porticus-lab/go-planner"
)

// Plan is a whole planner.
type Plan struct {
	Title string `yaml:"title"`
	Pages []Page `yaml:"pages"`
}

// Page is one planner page. Texts are placed before stickers.
type Page struct {
	Texts    []Text    `yaml:"texts"`
	Stickers []Sticker `yaml:"stickers"`
}

// Text is a text box, offset by DX, DY points from the default placement.
type Text struct {
	Text   string  `yaml:"text"`
	DX     float64 `yaml:"dx"`
	DY     float64 `yaml:"dy"`
	Delete bool    `yaml:"delete"`
}

// Sticker is an image sticker, offset by DX, DY points from the default
// placement.
type Sticker struct {
	Src    string  `yaml:"src"`
	DX     float64 `yaml:"dx"`
	DY     float64 `yaml:"dy"`
	Delete bool    `yaml:"delete"`
}

// Load reads and validates the plan file at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML plan.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("plan: decoding: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate reports the first structural problem in the plan.
func (p *Plan) Validate() error {
	if len(p.Pages) == 0 {
		return errors.New("plan: no pages")
	}
	for i, pg := range p.Pages {
		for j, s := range pg.Stickers {
			if s.Src == "" {
				return fmt.Errorf("plan: page %d sticker %d: missing src", i+1, j+1)
			}
		}
	}
	return nil
}

// Apply replays p on e. The editor's first page receives the first plan
// page; later plan pages are added after it. A sticker that fails to load
// aborts the replay.
func Apply(ctx context.Context, e *planner.Editor, p *Plan) error {
	for i, pg := range p.Pages {
		if i > 0 {
			if _, err := e.AddPage(ctx); err != nil {
				return err
			}
		}
		for _, t := range pg.Texts {
			if _, err := e.AddText(t.Text); err != nil {
				return err
			}
			if err := finish(e, t.DX, t.DY, t.Delete); err != nil {
				return err
			}
		}
		for _, s := range pg.Stickers {
			if _, err := e.AddSticker(ctx, s.Src); err != nil {
				return fmt.Errorf("plan: page %d: %w", i+1, err)
			}
			if err := finish(e, s.DX, s.DY, s.Delete); err != nil {
				return err
			}
		}
	}
	return nil
}

// finish moves the just-placed item and removes it when del is set.
func finish(e *planner.Editor, dx, dy float64, del bool) error {
	if dx != 0 || dy != 0 {
		if _, err := e.MoveSelected(dx, dy); err != nil {
			return err
		}
	}
	if del {
		if _, err := e.DeleteSelected(); err != nil {
			return err
		}
	}
	return nil
}
