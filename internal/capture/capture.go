// Package capture saves window grabs as PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Capture writes timestamped PNG screenshots.
type Capture struct {
	dir    string
	prefix string
	now    func() time.Time
	create func(name string) (io.WriteCloser, error)
}

// New creates a capture writing prefix_<timestamp>.png files into dir.
// An empty dir means the working directory.
func New(dir, prefix string) *Capture {
	if prefix == "" {
		prefix = "screenshot"
	}
	return &Capture{dir: dir, prefix: prefix, now: time.Now, create: createFile}
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// Filename returns the path the next capture would be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.dir != "" {
		name = filepath.Join(c.dir, name)
	}
	return name
}

// Save encodes img and returns the written path. The file only counts as
// saved once it closed cleanly.
func (c *Capture) Save(img image.Image) (path string, err error) {
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	file, err := c.create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			path, err = "", fmt.Errorf("closing %s: %w", filename, cerr)
		}
	}()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// FlipRows reverses the row order of img in place. GL read-backs have
// their origin at the bottom left.
func FlipRows(img *image.RGBA) {
	h := img.Bounds().Dy()
	rowSize := img.Bounds().Dx() * 4
	tmp := make([]byte, rowSize)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowSize]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+rowSize]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}
