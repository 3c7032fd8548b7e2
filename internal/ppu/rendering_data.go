package ppu

// Pattern is a decoded 8x8 tile. Each cell is a 2-bit color index.
type Pattern [8][8]uint8

// Tile is one background cell of a frame snapshot.
type Tile struct {
	Pattern   *Pattern
	PaletteID uint8
	ScrollX   uint8
	ScrollY   uint8
}

// Sprite is one OAM entry resolved against the sprite pattern table.
type Sprite struct {
	Pattern   *Pattern
	X         uint8
	Y         int
	Attribute uint8
	ID        uint8
}

// Sprite attribute bits
const (
	SpriteFlipVertical   = 0x80
	SpriteFlipHorizontal = 0x40
	SpriteBehind         = 0x20
	SpritePalette        = 0x03
)

// RenderingData is the per-frame snapshot handed to a renderer. Background is
// laid out row-major, 33 tiles per row, and is empty when the background layer
// is disabled. Sprites is empty when the sprite layer is disabled.
type RenderingData struct {
	Palette    [32]uint8
	Background []Tile
	Sprites    []Sprite
}
