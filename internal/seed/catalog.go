// Package seed loads the default catalog and inserts it into the store.
package seed

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/studio-lights/db"
	"github.com/xenking/studio-lights/internal/domain/background"
	"github.com/xenking/studio-lights/internal/domain/lighting"
	"github.com/xenking/studio-lights/internal/domain/prompt"
)

// Catalog is the set of rows inserted at initialization.
type Catalog struct {
	Prompts         []prompt.Prompt
	LightingSchemes []lighting.Scheme
	Backgrounds     []background.Background
}

// Default decodes the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Decode(db.SeedCatalog)
}

// Decode parses a catalog document. Rows are active unless the document
// sets "is_active": false. Unknown keys are ignored.
func Decode(data []byte) (*Catalog, error) {
	var c Catalog
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "prompts":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodePrompt(d)
				if err != nil {
					return err
				}
				c.Prompts = append(c.Prompts, p)
				return nil
			})
		case "lighting_schemes":
			return d.Arr(func(d *jx.Decoder) error {
				s, err := decodeScheme(d)
				if err != nil {
					return err
				}
				c.LightingSchemes = append(c.LightingSchemes, s)
				return nil
			})
		case "backgrounds":
			return d.Arr(func(d *jx.Decoder) error {
				b, err := decodeBackground(d)
				if err != nil {
					return err
				}
				c.Backgrounds = append(c.Backgrounds, b)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return &c, nil
}

func decodePrompt(d *jx.Decoder) (prompt.Prompt, error) {
	p := prompt.Prompt{Version: 1, IsActive: true}
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "content":
			p.Content, err = d.Str()
		case "version":
			p.Version, err = d.Int()
		case "is_active":
			p.IsActive, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return p, errors.Wrap(err, "prompt")
	}
	if p.Name == "" {
		return p, errors.New("prompt: name is required")
	}
	return p, nil
}

func decodeScheme(d *jx.Decoder) (lighting.Scheme, error) {
	s := lighting.Scheme{IsActive: true}
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			s.ID, err = d.Str()
		case "name":
			s.Name, err = d.Str()
		case "description":
			s.Description, err = d.Str()
		case "prompt_text":
			s.PromptText, err = d.Str()
		case "sort_order":
			s.SortOrder, err = d.Int()
		case "is_active":
			s.IsActive, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return s, errors.Wrap(err, "lighting scheme")
	}
	if s.ID == "" {
		return s, errors.New("lighting scheme: id is required")
	}
	return s, nil
}

func decodeBackground(d *jx.Decoder) (background.Background, error) {
	b := background.Background{IsActive: true}
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			b.ID, err = d.Str()
		case "name":
			b.Name, err = d.Str()
		case "description":
			b.Description, err = d.Str()
		case "prompt_text":
			b.PromptText, err = d.Str()
		case "sort_order":
			b.SortOrder, err = d.Int()
		case "is_default":
			b.IsDefault, err = d.Bool()
		case "is_active":
			b.IsActive, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return b, errors.Wrap(err, "background")
	}
	if b.ID == "" {
		return b, errors.New("background: id is required")
	}
	return b, nil
}
