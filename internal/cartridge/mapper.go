package cartridge

import "sort"

// Mapper is the cartridge's view of the CPU address space from 0x6000 up.
type Mapper interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// MapperFactory builds a mapper for a loaded cartridge.
type MapperFactory func(cart *Cartridge) Mapper

var mappers = map[uint8]MapperFactory{
	0: func(cart *Cartridge) Mapper { return NewMapper000(cart) },
}

// NewMapper returns the mapper registered for the cartridge's mapper number.
func NewMapper(cart *Cartridge) (Mapper, error) {
	factory, ok := mappers[cart.mapperID]
	if !ok {
		return nil, &UnsupportedMapperError{ID: cart.mapperID}
	}
	return factory(cart), nil
}

// SupportedMappers lists the registered mapper numbers in ascending order.
func SupportedMappers() []uint8 {
	ids := make([]uint8, 0, len(mappers))
	for id := range mappers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
