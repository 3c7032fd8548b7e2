package memory

import "log"

// DMACycles is the CPU time charged for one OAM transfer.
const DMACycles = 514

const oamSize = 256

// Reader is the bus the DMA controller copies from.
type Reader interface {
	Read(address uint16) uint8
}

// SpriteTransfer receives the bytes of an OAM transfer.
type SpriteTransfer interface {
	TransferSprite(index uint8, value uint8)
}

// DMA models the OAM DMA unit: a write to 0x4014 latches a source page and
// Run later copies the whole page into sprite memory.
type DMA struct {
	source     Reader
	target     SpriteTransfer
	baseAddr   uint16
	processing bool

	enableDebugLogging bool
}

// NewDMA creates a DMA controller reading from source and writing to target.
func NewDMA(source Reader, target SpriteTransfer) *DMA {
	return &DMA{source: source, target: target}
}

// Write latches the source page and marks a transfer pending.
func (d *DMA) Write(page uint8) {
	d.baseAddr = uint16(page) << 8
	d.processing = true
}

// IsProcessing reports whether a transfer is waiting to run.
func (d *DMA) IsProcessing() bool {
	return d.processing
}

// Run copies 256 bytes from the latched page into OAM and clears the pending
// flag.
func (d *DMA) Run() {
	if !d.processing {
		return
	}
	for i := 0; i < oamSize; i++ {
		d.target.TransferSprite(uint8(i), d.source.Read(d.baseAddr+uint16(i)))
	}
	d.processing = false

	if d.enableDebugLogging {
		log.Printf("[DMA] Copied page $%02X to OAM", d.baseAddr>>8)
	}
}

// SetDebugLogging enables a log line per transfer
func (d *DMA) SetDebugLogging(enabled bool) {
	d.enableDebugLogging = enabled
}
