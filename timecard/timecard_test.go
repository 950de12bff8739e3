package timecard

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidAvatar(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCanvasSize(t *testing.T) {
	tests := []struct {
		name   string
		groups int
		wantW  int
		wantH  int
	}{
		{name: "one group", groups: 1, wantW: 1700, wantH: 1900},
		{name: "full row", groups: 5, wantW: 8100, wantH: 1900},
		{name: "wraps to second row", groups: 6, wantW: 8100, wantH: 3700},
		{name: "three rows", groups: 11, wantW: 8100, wantH: 5500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := canvasSize(tt.groups)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("canvasSize(%v) = (%v, %v), want (%v, %v)", tt.groups, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	_, err := Render(nil)
	require.ErrorIs(t, err, ErrNoGroups)
}

func TestRender(t *testing.T) {
	red := color.RGBA{R: 0xFF, A: 0xFF}
	groups := []Group{
		{Label: "12:00 (+00:00)", Avatars: []image.Image{solidAvatar(red)}},
		{Label: "13:00 (+01:00)", Avatars: nil},
	}

	data, err := Render(groups)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	wantW, wantH := canvasSize(len(groups))
	assert.Equal(t, wantW, img.Bounds().Dx())
	assert.Equal(t, wantH, img.Bounds().Dy())

	// first group's first avatar sits at (margin, margin+avatarOffset)
	r, g, b, _ := img.At(margin+10, margin+avatarOffset+10).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)

	// outside any avatar the background shows through
	r, g, b, _ = img.At(wantW-10, wantH-10).RGBA()
	assert.Equal(t, uint32(0xF1F1), r)
	assert.Equal(t, uint32(0xC3C3), g)
	assert.Equal(t, uint32(0x0F0F), b)
}

func TestRenderCapsAvatarsPerGroup(t *testing.T) {
	grey := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	var avatars []image.Image
	for i := 0; i < maxAvatars+5; i++ {
		avatars = append(avatars, solidAvatar(grey))
	}

	data, err := Render([]Group{{Label: "00:00 (+00:00)", Avatars: avatars}})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1900, img.Bounds().Dy())

	// a 37th avatar would land at row 6; with the cap that spot stays background
	r, g, b, _ := img.At(margin+10, margin+avatarOffset+6*avatarSize+10).RGBA()
	assert.Equal(t, uint32(0xF1F1), r)
	assert.Equal(t, uint32(0xC3C3), g)
	assert.Equal(t, uint32(0x0F0F), b)

	// the 36th is drawn
	r, g, b, _ = img.At(margin+10+5*avatarSize, margin+avatarOffset+5*avatarSize+10).RGBA()
	assert.Equal(t, uint32(0x8080), r)
	assert.Equal(t, uint32(0x8080), g)
	assert.Equal(t, uint32(0x8080), b)
}
