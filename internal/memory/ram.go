package memory

// RAM is a flat byte store with a fixed size. Addresses wrap modulo the size.
type RAM struct {
	data []uint8
}

// NewRAM allocates size zeroed bytes.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]uint8, size)}
}

// NewRAMFrom allocates size bytes and copies init into the start of it.
func NewRAMFrom(size int, init []uint8) *RAM {
	r := NewRAM(size)
	copy(r.data, init)
	return r
}

func (r *RAM) Read(address uint16) uint8 {
	return r.data[int(address)%len(r.data)]
}

func (r *RAM) Write(address uint16, value uint8) {
	r.data[int(address)%len(r.data)] = value
}

// Size returns the number of bytes held.
func (r *RAM) Size() int {
	return len(r.data)
}

// Bytes exposes the backing slice.
func (r *RAM) Bytes() []uint8 {
	return r.data
}

// Clear zeroes every byte.
func (r *RAM) Clear() {
	clear(r.data)
}
