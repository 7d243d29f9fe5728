package mapengine

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/zyedidia/generic/mapset"
)

// TextureRegion describes a sub-rectangle within an atlas page holding one
// POI icon or glyph sprite.
type TextureRegion struct {
	Page      uint16
	X, Y      uint16
	Width     uint16
	Height    uint16
	OriginalW uint16
	OriginalH uint16
	OffsetX   int16
	OffsetY   int16
	Rotated   bool
}

// ImageCache holds one or more atlas page images, a name-indexed map of
// icon regions, and tracks which icon names have been requested so the
// DataSource for icon pages can preload just the pages actually in use.
type ImageCache struct {
	Pages     []*ebiten.Image
	regions   map[string]TextureRegion
	preloaded mapset.Set[string]
}

// Region returns the TextureRegion for name. On a miss it logs a warning
// and returns a 1x1 magenta placeholder on a sentinel page, so a missing
// icon renders as an obviously wrong color instead of panicking or
// silently drawing nothing.
func (c *ImageCache) Region(name string) TextureRegion {
	if r, ok := c.regions[name]; ok {
		c.preloaded.Put(name)
		return r
	}
	log.WithField("icon", name).Warn("icon region not found, using placeholder")
	return magentaRegion()
}

// magentaPlaceholderPage is a sentinel page index used for magenta placeholders.
const magentaPlaceholderPage = 0xFFFF

var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

func magentaRegion() TextureRegion {
	return TextureRegion{Page: magentaPlaceholderPage, Width: 1, Height: 1, OriginalW: 1, OriginalH: 1}
}

// LoadImageCache parses TexturePacker JSON (hash or array format) and
// associates it with the given page images.
func LoadImageCache(jsonData []byte, pages []*ebiten.Image) (*ImageCache, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("mapengine: failed to parse image cache JSON: %w", err)
	}

	cache := &ImageCache{
		Pages:     pages,
		regions:   make(map[string]TextureRegion),
		preloaded: mapset.New[string](),
	}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, cache); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, cache); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("mapengine: image cache JSON has neither \"frames\" nor \"textures\" key")
	}
	return cache, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func parseHashFrames(raw json.RawMessage, pageIndex uint16, cache *ImageCache) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("mapengine: failed to parse image cache frames: %w", err)
	}
	for name, f := range frames {
		cache.regions[name] = frameToRegion(f, pageIndex)
	}
	return nil
}

func parseArrayFormat(raw json.RawMessage, cache *ImageCache) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("mapengine: failed to parse image cache textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			cache.regions[name] = frameToRegion(f, uint16(i))
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}
