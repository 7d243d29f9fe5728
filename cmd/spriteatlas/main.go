// Command spriteatlas packs a directory of PNG icons into a single atlas
// page plus a TexturePacker-format JSON sprite-rect descriptor, the sprite
// atlas format LoadImageCache reads. Packing fails with an error when the
// icons do not fit within the maximum page height.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/gookit/color"
	xdraw "golang.org/x/image/draw"
)

type options struct {
	inputDir   string
	outputPath string
	prefix     string
	maxWidth   int
	maxHeight  int
	margin     int
	verbose    bool
	jsonOnly   bool
	colorize   bool
}

func parseFlags(args []string) options {
	fs := flag.NewFlagSet("spriteatlas", flag.ExitOnError)
	var o options
	fs.StringVar(&o.inputDir, "i", "", "input directory of PNG icons")
	fs.StringVar(&o.outputPath, "o", "atlas", "output path prefix (writes <prefix>.png and <prefix>.json)")
	fs.StringVar(&o.prefix, "p", "", "name prefix stripped from each region's key")
	fs.IntVar(&o.maxWidth, "w", 2048, "maximum atlas page width")
	fs.IntVar(&o.maxHeight, "h", 2048, "maximum atlas page height")
	fs.IntVar(&o.margin, "m", 1, "pixel margin between packed icons")
	fs.BoolVar(&o.verbose, "v", false, "verbose status output")
	fs.BoolVar(&o.jsonOnly, "j", false, "skip writing the atlas PNG, descriptor only")
	fs.BoolVar(&o.colorize, "c", false, "force colorized status output even when not a TTY")
	fs.Parse(args)
	return o
}

func main() {
	o := parseFlags(os.Args[1:])
	if o.inputDir == "" {
		fmt.Fprintln(os.Stderr, "spriteatlas: -i input directory is required")
		os.Exit(2)
	}
	if o.colorize {
		color.Enable = true
	}
	if err := run(o); err != nil {
		color.Style{color.FgRed, color.OpBold}.Println("spriteatlas: error:", err)
		os.Exit(1)
	}
}

type sourceImage struct {
	name string
	img  image.Image
}

func run(o options) error {
	sources, err := loadSources(o.inputDir, o.verbose)
	if err != nil {
		return err
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].name < sources[j].name })

	regions, page, err := pack(sources, o.maxWidth, o.maxHeight, o.margin)
	if err != nil {
		return err
	}

	if !o.jsonOnly {
		pngPath := o.outputPath + ".png"
		f, err := os.Create(pngPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", pngPath, err)
		}
		defer f.Close()
		if err := png.Encode(f, page); err != nil {
			return fmt.Errorf("encoding %s: %w", pngPath, err)
		}
		if o.verbose {
			color.Style{color.FgGreen}.Println("wrote", pngPath)
		}
	}

	jsonPath := o.outputPath + ".json"
	if err := writeDescriptor(jsonPath, regions, o.prefix); err != nil {
		return err
	}
	if o.verbose {
		color.Style{color.FgGreen}.Println("wrote", jsonPath)
	}
	return nil
}

func loadSources(dir string, verbose bool) ([]sourceImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var sources []sourceImage
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		name := e.Name()[:len(e.Name())-len(".png")]
		sources = append(sources, sourceImage{name: name, img: img})
		if verbose {
			color.Style{color.FgCyan}.Println("loaded", path)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no .png files found in %s", dir)
	}
	return sources, nil
}

type packedRegion struct {
	name       string
	x, y, w, h int
}

// pack lays out sources left-to-right in shelves (rows), wrapping to a new
// shelf once a row would exceed maxWidth, and growing the page height as
// shelves are added.
func pack(sources []sourceImage, maxWidth, maxHeight, margin int) ([]packedRegion, image.Image, error) {
	var regions []packedRegion
	cursorX, cursorY, shelfHeight := margin, margin, 0
	pageWidth := 0

	for _, s := range sources {
		b := s.img.Bounds()
		w, h := b.Dx(), b.Dy()
		if cursorX+w+margin > maxWidth {
			cursorX = margin
			cursorY += shelfHeight + margin
			shelfHeight = 0
		}
		regions = append(regions, packedRegion{name: s.name, x: cursorX, y: cursorY, w: w, h: h})
		if cursorX+w > pageWidth {
			pageWidth = cursorX + w
		}
		cursorX += w + margin
		if h > shelfHeight {
			shelfHeight = h
		}
	}
	pageHeight := cursorY + shelfHeight + margin
	if pageHeight > maxHeight {
		return nil, nil, fmt.Errorf("packed atlas height %d exceeds max height %d (add another page)", pageHeight, maxHeight)
	}

	page := image.NewNRGBA(image.Rect(0, 0, pageWidth+margin, pageHeight))
	for i, s := range sources {
		r := regions[i]
		dstRect := image.Rect(r.x, r.y, r.x+r.w, r.y+r.h)
		if r.w == s.img.Bounds().Dx() && r.h == s.img.Bounds().Dy() {
			draw.Draw(page, dstRect, s.img, s.img.Bounds().Min, draw.Src)
		} else {
			xdraw.CatmullRom.Scale(page, dstRect, s.img, s.img.Bounds(), xdraw.Over, nil)
		}
	}
	return regions, page, nil
}

type jsonFrame struct {
	Frame struct {
		X, Y, W, H int
	} `json:"frame"`
	SourceSize struct{ W, H int } `json:"sourceSize"`
}

func writeDescriptor(path string, regions []packedRegion, prefix string) error {
	frames := make(map[string]jsonFrame, len(regions))
	for _, r := range regions {
		key := r.name
		if prefix != "" && len(key) > len(prefix) && key[:len(prefix)] == prefix {
			key = key[len(prefix):]
		}
		var jf jsonFrame
		jf.Frame.X, jf.Frame.Y, jf.Frame.W, jf.Frame.H = r.x, r.y, r.w, r.h
		jf.SourceSize.W, jf.SourceSize.H = r.w, r.h
		frames[key] = jf
	}
	out := struct {
		Frames map[string]jsonFrame `json:"frames"`
	}{Frames: frames}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling descriptor: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
