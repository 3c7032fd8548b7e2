package graphics

import (
	"time"

	"nescore/internal/ppu"
)

const (
	tileSize          = 8
	tilesPerRow       = 33
	spritePaletteBase = 0x10
)

// Renderer converts PPU snapshots into frames. The frame persists between
// calls, so a layer missing from a snapshot leaves its previous pixels.
type Renderer struct {
	frame      Frame
	background []ppu.Tile
	colors     [32]uint32

	currentSecond  int64
	framesInSecond int
	fps            int
	now            func() time.Time
}

// NewRenderer creates a renderer with a black frame
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render draws data into the frame and returns it. The returned frame is
// reused by the next call.
func (r *Renderer) Render(data *ppu.RenderingData) *Frame {
	r.countFrame()
	if data == nil || (len(data.Background) == 0 && len(data.Sprites) == 0) {
		return &r.frame
	}

	for i, index := range data.Palette {
		r.colors[i] = Colors[index&0x3F]
	}
	if len(data.Background) > 0 {
		r.renderBackground(data.Background)
	}
	for i := range data.Sprites {
		r.renderSprite(&data.Sprites[i])
	}
	return &r.frame
}

// Frame returns the current frame
func (r *Renderer) Frame() *Frame {
	return &r.frame
}

// FPS returns the frames rendered during the last whole second
func (r *Renderer) FPS() int {
	return r.fps
}

func (r *Renderer) countFrame() {
	second := r.now().Unix()
	if second != r.currentSecond {
		r.fps = r.framesInSecond
		r.currentSecond = second
		r.framesInSecond = 1
		return
	}
	r.framesInSecond++
}

func (r *Renderer) renderBackground(background []ppu.Tile) {
	r.background = background
	for i := range background {
		x := (i % tilesPerRow) * tileSize
		y := (i / tilesPerRow) * tileSize
		r.renderTile(&background[i], x, y)
	}
}

func (r *Renderer) renderTile(tile *ppu.Tile, tileX, tileY int) {
	offsetX := tileX - int(tile.ScrollX%tileSize)
	offsetY := tileY - int(tile.ScrollY%tileSize)
	base := int(tile.PaletteID) * 4

	for i := 0; i < tileSize; i++ {
		y := offsetY + i
		if y < 0 || y >= VisibleHeight {
			continue
		}
		row := &tile.Pattern[i]
		for j := 0; j < tileSize; j++ {
			x := offsetX + j
			if x < 0 || x >= FrameWidth {
				continue
			}
			r.frame[y*FrameWidth+x] = r.colors[base+int(row[j])]
		}
	}
}

func (r *Renderer) renderSprite(sprite *ppu.Sprite) {
	flipV := sprite.Attribute&ppu.SpriteFlipVertical != 0
	flipH := sprite.Attribute&ppu.SpriteFlipHorizontal != 0
	behind := sprite.Attribute&ppu.SpriteBehind != 0
	base := int(sprite.Attribute&ppu.SpritePalette)*4 + spritePaletteBase

	for i := 0; i < tileSize; i++ {
		dy := i
		if flipV {
			dy = tileSize - 1 - i
		}
		y := sprite.Y + dy
		if y < 0 || y >= FrameHeight {
			continue
		}
		for j := 0; j < tileSize; j++ {
			dx := j
			if flipH {
				dx = tileSize - 1 - j
			}
			x := int(sprite.X) + dx
			if x >= FrameWidth {
				continue
			}
			pixel := sprite.Pattern[i][j]
			if pixel == 0 {
				continue
			}
			if behind && r.backgroundOpaque(x, y) {
				continue
			}
			r.frame[y*FrameWidth+x] = r.colors[base+int(pixel)]
		}
	}
}

// backgroundOpaque reports whether the most recent background has a
// non-zero pattern pixel at (x, y). Scroll is ignored.
func (r *Renderer) backgroundOpaque(x, y int) bool {
	index := (y/tileSize)*tilesPerRow + x/tileSize
	if index >= len(r.background) || r.background[index].Pattern == nil {
		return false
	}
	return r.background[index].Pattern[y%tileSize][x%tileSize] != 0
}
