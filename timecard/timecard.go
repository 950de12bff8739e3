package timecard

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNoGroups is returned when there is nothing to render.
var ErrNoGroups = errors.New("no timezone groups to render")

// Group is one timezone block on the card: a label like "15:04 (-07:00)"
// and the avatars of the users currently at that local time.
type Group struct {
	Label   string
	Avatars []image.Image
}

const (
	cellWidth    = 1600
	cellHeight   = 1800
	margin       = 100
	maxColumns   = 5
	labelSize    = 120
	avatarSize   = 250
	avatarOffset = 200 // label row height above the avatar grid
	gridColumns  = 6
	maxAvatars   = 36 // 6x6 grid per group
)

var (
	background  = color.RGBA{R: 0xF1, G: 0xC3, B: 0x0F, A: 0xFF}
	labelColour = color.RGBA{R: 0x1B, G: 0x1A, B: 0x1C, A: 0xFF}
)

// Render lays the groups out on a grid, five per row, and returns the
// composite as a PNG.
func Render(groups []Group) ([]byte, error) {
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	face, err := newLabelFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	w, h := canvasSize(len(groups))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	x, y := margin, margin
	for _, group := range groups {
		drawLabel(img, face, group.Label, x, y)

		avatars := group.Avatars
		if len(avatars) > maxAvatars {
			avatars = avatars[:maxAvatars]
		}
		for i, avatar := range avatars {
			col, row := i%gridColumns, i/gridColumns
			pasteAvatar(img, avatar, x+col*avatarSize, y+avatarOffset+row*avatarSize)
		}

		if x > cellWidth*(maxColumns-1) {
			y += cellHeight
			x = margin
		} else {
			x += cellWidth
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func canvasSize(groups int) (w, h int) {
	cols := groups
	if cols > maxColumns {
		cols = maxColumns
	}
	rows := int(math.Ceil(float64(groups) / float64(maxColumns)))
	return cellWidth*cols + margin, cellHeight*rows + margin
}

func newLabelFace() (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    labelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func drawLabel(dst *image.RGBA, face font.Face, label string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColour),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(label)
}

func pasteAvatar(dst *image.RGBA, avatar image.Image, x, y int) {
	r := image.Rect(x, y, x+avatarSize, y+avatarSize)
	xdraw.ApproxBiLinear.Scale(dst, r, avatar, avatar.Bounds(), xdraw.Over, nil)
}
