package texture

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestInspect_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	info, err := Inspect(buf.Bytes())
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Format != "png" || info.Width != 8 || info.Height != 4 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestInspect_Garbage(t *testing.T) {
	if _, err := Inspect([]byte("not a texture")); err == nil {
		t.Error("expected error")
	}
}

func TestInspector_DescribeTexture(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	got, err := Inspector{}.DescribeTexture(buf.Bytes())
	if err != nil {
		t.Fatalf("DescribeTexture failed: %v", err)
	}
	if got != "png 16x16" {
		t.Errorf("DescribeTexture = %q, want %q", got, "png 16x16")
	}
}
