// Package texture reads texture headers without decoding pixel data.
package texture

import (
	"bytes"
	"fmt"
	"image"

	_ "github.com/lukegb/dds"
)

// Info describes a texture
type Info struct {
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

func (i Info) String() string {
	return fmt.Sprintf("%s %dx%d", i.Format, i.Width, i.Height)
}

// Inspect decodes the header of a DDS (or any registered image format) texture
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("reading texture header: %w", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Inspector adapts Inspect to ports.TextureInspector
type Inspector struct{}

func (Inspector) DescribeTexture(data []byte) (string, error) {
	info, err := Inspect(data)
	if err != nil {
		return "", err
	}
	return info.String(), nil
}
