package ebiten

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
)

// ImageCache loads image assets from a filesystem on first use. Failed loads
// are remembered so a missing asset is only reported once.
type ImageCache struct {
	fsys   fs.FS
	dir    string
	images map[string]*ebiten.Image
	failed map[string]bool
}

// NewImageCache creates a cache reading assets from dir inside fsys
func NewImageCache(fsys fs.FS, dir string) *ImageCache {
	if dir == "" {
		dir = "."
	}
	return &ImageCache{
		fsys:   fsys,
		dir:    dir,
		images: make(map[string]*ebiten.Image),
		failed: make(map[string]bool),
	}
}

// Get returns the image for ref, loading it if needed
func (c *ImageCache) Get(ref string) (*ebiten.Image, bool) {
	if ref == "" || c.fsys == nil {
		return nil, false
	}
	if img, ok := c.images[ref]; ok {
		return img, true
	}
	if c.failed[ref] {
		return nil, false
	}

	src, err := c.decode(ref)
	if err != nil {
		c.failed[ref] = true
		log.Warn().Err(err).Str("asset", ref).Msg("image unavailable, drawing placeholder")
		return nil, false
	}

	img := ebiten.NewImageFromImage(src)
	c.images[ref] = img
	return img, true
}

// Preload loads every ref up front and returns how many were available
func (c *ImageCache) Preload(refs ...string) int {
	n := 0
	for _, ref := range refs {
		if _, ok := c.Get(ref); ok {
			n++
		}
	}
	return n
}

func (c *ImageCache) decode(ref string) (image.Image, error) {
	f, err := c.fsys.Open(path.Join(c.dir, ref))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}
