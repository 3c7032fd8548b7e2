package graphics

import (
	"testing"
	"time"

	"nescore/internal/ppu"
)

func solidPattern(value uint8) *ppu.Pattern {
	var p ppu.Pattern
	for y := range p {
		for x := range p[y] {
			p[y][x] = value
		}
	}
	return &p
}

// cornerPattern has a single pixel of value 1 in the top-left corner.
func cornerPattern() *ppu.Pattern {
	var p ppu.Pattern
	p[0][0] = 1
	return &p
}

func testPalette() [32]uint8 {
	var palette [32]uint8
	for i := range palette {
		palette[i] = uint8(i)
	}
	return palette
}

func emptyBackground(pattern *ppu.Pattern) []ppu.Tile {
	tiles := make([]ppu.Tile, 33*30)
	for i := range tiles {
		tiles[i].Pattern = pattern
	}
	return tiles
}

func TestRenderer_EmptySnapshotKeepsFrame(t *testing.T) {
	r := NewRenderer()
	frame := r.Render(&ppu.RenderingData{Palette: testPalette(), Background: emptyBackground(solidPattern(1))})
	before := frame.At(10, 10)
	if before != Colors[1] {
		t.Fatalf("pixel = %06X, want %06X", before, Colors[1])
	}

	frame = r.Render(&ppu.RenderingData{})
	if frame.At(10, 10) != before {
		t.Error("empty snapshot cleared the frame")
	}
	if r.Render(nil) != frame {
		t.Error("nil snapshot did not return the current frame")
	}
}

func TestRenderer_BackgroundPaletteLookup(t *testing.T) {
	r := NewRenderer()
	background := emptyBackground(solidPattern(2))
	background[1].PaletteID = 3

	frame := r.Render(&ppu.RenderingData{Palette: testPalette(), Background: background})

	if got := frame.At(0, 0); got != Colors[2] {
		t.Errorf("tile 0 = %06X, want %06X", got, Colors[2])
	}
	if got := frame.At(8, 0); got != Colors[3*4+2] {
		t.Errorf("tile 1 = %06X, want %06X", got, Colors[14])
	}
}

func TestRenderer_BackgroundClippedToVisibleArea(t *testing.T) {
	r := NewRenderer()
	frame := r.Render(&ppu.RenderingData{Palette: testPalette(), Background: emptyBackground(solidPattern(1))})

	if frame.At(0, VisibleHeight-1) != Colors[1] {
		t.Error("last visible line not drawn")
	}
	if frame.At(0, VisibleHeight) != 0 {
		t.Error("line below the visible area was drawn")
	}
}

func TestRenderer_FineScrollShiftsTiles(t *testing.T) {
	r := NewRenderer()
	background := emptyBackground(&ppu.Pattern{})
	background[1].Pattern = cornerPattern()
	background[1].ScrollX = 3
	background[1].ScrollY = 0

	frame := r.Render(&ppu.RenderingData{Palette: testPalette(), Background: background})

	if frame.At(5, 0) != Colors[1] {
		t.Errorf("scrolled pixel missing at x=5: %06X", frame.At(5, 0))
	}
	if frame.At(8, 0) != Colors[0] {
		t.Errorf("unscrolled position still lit: %06X", frame.At(8, 0))
	}
}

func TestRenderer_SpriteFlips(t *testing.T) {
	tests := []struct {
		name      string
		attribute uint8
		x, y      int
	}{
		{"none", 0, 100, 50},
		{"horizontal", ppu.SpriteFlipHorizontal, 107, 50},
		{"vertical", ppu.SpriteFlipVertical, 100, 57},
		{"both", ppu.SpriteFlipHorizontal | ppu.SpriteFlipVertical, 107, 57},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer()
			frame := r.Render(&ppu.RenderingData{
				Palette: testPalette(),
				Sprites: []ppu.Sprite{{Pattern: cornerPattern(), X: 100, Y: 50, Attribute: tt.attribute | 2}},
			})
			want := Colors[0x10+2*4+1]
			if got := frame.At(tt.x, tt.y); got != want {
				t.Errorf("pixel (%d,%d) = %06X, want %06X", tt.x, tt.y, got, want)
			}
		})
	}
}

func TestRenderer_SpriteTransparentPixelsKeepBackground(t *testing.T) {
	r := NewRenderer()
	frame := r.Render(&ppu.RenderingData{
		Palette:    testPalette(),
		Background: emptyBackground(solidPattern(1)),
		Sprites:    []ppu.Sprite{{Pattern: cornerPattern(), X: 16, Y: 16}},
	})

	if frame.At(16, 16) != Colors[0x11] {
		t.Error("opaque sprite pixel not drawn")
	}
	if frame.At(17, 16) != Colors[1] {
		t.Error("transparent sprite pixel overwrote the background")
	}
}

func TestRenderer_BehindBackgroundPriority(t *testing.T) {
	background := emptyBackground(&ppu.Pattern{})
	// Tile (2,2) is opaque, so the behind-sprite is hidden only there.
	background[2*33+2].Pattern = solidPattern(3)

	r := NewRenderer()
	frame := r.Render(&ppu.RenderingData{
		Palette:    testPalette(),
		Background: background,
		Sprites: []ppu.Sprite{
			{Pattern: solidPattern(1), X: 16, Y: 16, Attribute: ppu.SpriteBehind},
			{Pattern: solidPattern(1), X: 40, Y: 16, Attribute: ppu.SpriteBehind},
		},
	})

	if frame.At(16, 16) != Colors[3] {
		t.Errorf("behind sprite drawn over opaque background: %06X", frame.At(16, 16))
	}
	if frame.At(40, 16) != Colors[0x11] {
		t.Errorf("behind sprite hidden by transparent background: %06X", frame.At(40, 16))
	}
}

func TestRenderer_SpritesClippedAtEdges(t *testing.T) {
	r := NewRenderer()
	frame := r.Render(&ppu.RenderingData{
		Palette: testPalette(),
		Sprites: []ppu.Sprite{
			{Pattern: solidPattern(1), X: 252, Y: 100},
			{Pattern: solidPattern(1), X: 0, Y: 236},
		},
	})

	if frame.At(255, 100) != Colors[0x11] {
		t.Error("sprite column inside the frame missing")
	}
	if frame.At(0, 239) != Colors[0x11] {
		t.Error("sprite row inside the frame missing")
	}
}

func TestRenderer_SpritesDrawnWithoutBackground(t *testing.T) {
	r := NewRenderer()
	r.Render(&ppu.RenderingData{Palette: testPalette(), Background: emptyBackground(solidPattern(1))})

	// Only sprites in the second snapshot: the old background stays.
	frame := r.Render(&ppu.RenderingData{
		Palette: testPalette(),
		Sprites: []ppu.Sprite{{Pattern: cornerPattern(), X: 0, Y: 0}},
	})
	if frame.At(0, 0) != Colors[0x11] || frame.At(1, 0) != Colors[1] {
		t.Error("sprite-only snapshot did not compose over the previous frame")
	}
}

func TestRenderer_FPS(t *testing.T) {
	clock := time.Unix(100, 0)
	r := NewRenderer()
	r.now = func() time.Time { return clock }

	for i := 0; i < 60; i++ {
		r.Render(nil)
	}
	clock = clock.Add(time.Second)
	r.Render(nil)

	if r.FPS() != 60 {
		t.Errorf("FPS = %d, want 60", r.FPS())
	}
}

func TestFrame_Image(t *testing.T) {
	var frame Frame
	frame[3*FrameWidth+2] = 0x112233

	img := frame.Image(nil)
	if img.Bounds().Dy() != VisibleHeight {
		t.Errorf("height = %d, want %d", img.Bounds().Dy(), VisibleHeight)
	}
	c := img.RGBAAt(2, 3)
	if c.R != 0x11 || c.G != 0x22 || c.B != 0x33 || c.A != 0xFF {
		t.Errorf("pixel = %+v", c)
	}
	if frame.Image(img) != img {
		t.Error("matching destination was not reused")
	}
}
