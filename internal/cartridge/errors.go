package cartridge

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHeader is returned for data that is not an iNES image.
	ErrInvalidHeader = errors.New("invalid iNES header")
	// ErrTruncated is returned when the image is shorter than its header claims.
	ErrTruncated = errors.New("truncated iNES image")
)

// UnsupportedMapperError is returned at load time for a mapper number with no
// registered implementation.
type UnsupportedMapperError struct {
	ID uint8
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("unsupported mapper %d", e.ID)
}

// AddressError reports a program ROM read outside the mapped window. Mappers
// raise it with panic because the bus read path has no error return; the
// machine recovers it and halts.
type AddressError struct {
	Address uint16
	Size    int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("PRG ROM read at $%04X outside %d byte ROM", e.Address, e.Size)
}
