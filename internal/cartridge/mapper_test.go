package cartridge

import (
	"errors"
	"testing"
)

func patternPRG(size int) []uint8 {
	prg := make([]uint8, size)
	for i := range prg {
		prg[i] = uint8(i>>8) ^ uint8(i)
	}
	return prg
}

func TestNewMapper_Registry(t *testing.T) {
	mapper, err := NewMapper(New(patternPRG(0x4000), nil, MirrorHorizontal, 0))
	if err != nil {
		t.Fatalf("NewMapper(0) failed: %v", err)
	}
	if _, ok := mapper.(*Mapper000); !ok {
		t.Errorf("mapper 0 built %T", mapper)
	}

	for _, id := range []uint8{1, 4, 0x41, 0xFF} {
		_, err := NewMapper(New(patternPRG(0x4000), nil, MirrorHorizontal, id))
		var unsupported *UnsupportedMapperError
		if !errors.As(err, &unsupported) || unsupported.ID != id {
			t.Errorf("mapper %d: expected UnsupportedMapperError, got %v", id, err)
		}
	}

	if ids := SupportedMappers(); len(ids) != 1 || ids[0] != 0 {
		t.Errorf("SupportedMappers = %v, want [0]", ids)
	}
}

func TestMapper000_16KBMirrorsIntoBothHalves(t *testing.T) {
	prg := patternPRG(0x4000)
	m := NewMapper000(New(prg, nil, MirrorHorizontal, 0))

	for _, offset := range []uint16{0x0000, 0x0001, 0x1234, 0x3FFA, 0x3FFF} {
		low := m.Read(0x8000 + offset)
		high := m.Read(0xC000 + offset)
		if low != prg[offset] || high != prg[offset] {
			t.Errorf("offset %04X: low=%02X high=%02X want %02X", offset, low, high, prg[offset])
		}
	}
}

func TestMapper000_32KBDirectMapping(t *testing.T) {
	prg := patternPRG(0x8000)
	m := NewMapper000(New(prg, nil, MirrorHorizontal, 0))

	for _, address := range []uint16{0x8000, 0xBFFF, 0xC000, 0xFFFC, 0xFFFF} {
		if got := m.Read(address); got != prg[address-0x8000] {
			t.Errorf("Read(%04X) = %02X, want %02X", address, got, prg[address-0x8000])
		}
	}
}

func TestMapper000_PRGRAM(t *testing.T) {
	m := NewMapper000(New(patternPRG(0x4000), nil, MirrorHorizontal, 0))

	m.Write(0x6000, 0x11)
	m.Write(0x7FFF, 0x22)
	if m.Read(0x6000) != 0x11 || m.Read(0x7FFF) != 0x22 {
		t.Errorf("PRG RAM read back %02X %02X", m.Read(0x6000), m.Read(0x7FFF))
	}
	if m.PRGRAM()[0x1FFF] != 0x22 {
		t.Error("PRGRAM() does not expose the window")
	}
}

func TestMapper000_ROMWritesIgnored(t *testing.T) {
	prg := patternPRG(0x8000)
	m := NewMapper000(New(prg, nil, MirrorHorizontal, 0))
	before := m.Read(0x9000)

	m.Write(0x9000, before+1)
	if got := m.Read(0x9000); got != before {
		t.Errorf("ROM write changed %02X to %02X", before, got)
	}
}

func TestMapper000_ExpansionAreaReadsZero(t *testing.T) {
	m := NewMapper000(New(patternPRG(0x4000), nil, MirrorHorizontal, 0))
	if got := m.Read(0x5000); got != 0 {
		t.Errorf("Read(5000) = %02X, want 0", got)
	}
}

func TestMapper000_OutOfRangeReadPanics(t *testing.T) {
	// 24KB of PRG is neither mirrored nor large enough for the window.
	m := NewMapper000(New(patternPRG(0x6000), nil, MirrorHorizontal, 0))
	if got := m.Read(0xDFFF); got != patternPRG(0x6000)[0x5FFF] {
		t.Errorf("Read(DFFF) = %02X", got)
	}

	defer func() {
		r := recover()
		addrErr, ok := r.(*AddressError)
		if !ok {
			t.Fatalf("Expected *AddressError panic, got %v", r)
		}
		if addrErr.Address != 0xE000 || addrErr.Size != 0x6000 {
			t.Errorf("Unexpected fault %+v", addrErr)
		}
	}()
	m.Read(0xE000)
}

func TestROMBuilder_RoundTrip(t *testing.T) {
	cart, err := NewROMBuilder().
		WithMirroring(MirrorVertical).
		WithBattery().
		WithTrainer([]uint8{1, 2, 3}).
		WithCode(0x8000, 0xA9, 0x42).
		WithCode(0xC010, 0xEA).
		WithResetVector(0x8000).
		WithNMIVector(0x9000).
		WithCHRData([]uint8{0xFF, 0x81}).
		BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge failed: %v", err)
	}

	m, err := NewMapper(cart)
	if err != nil {
		t.Fatal(err)
	}
	if m.Read(0x8000) != 0xA9 || m.Read(0x8001) != 0x42 {
		t.Error("code not placed at 0x8000")
	}
	// 16KB images mirror, so 0xC010 shares a byte with 0x8010.
	if m.Read(0x8010) != 0xEA {
		t.Error("code at 0xC010 not mirrored")
	}
	if m.Read(0xFFFA) != 0x00 || m.Read(0xFFFB) != 0x90 {
		t.Error("NMI vector wrong")
	}
	if m.Read(0xFFFC) != 0x00 || m.Read(0xFFFD) != 0x80 {
		t.Error("reset vector wrong")
	}
	if !cart.Mirroring().IsVertical() || !cart.HasBattery() {
		t.Error("header flags lost")
	}
	if cart.CHRROM()[1] != 0x81 {
		t.Error("CHR data lost")
	}
}

func TestROMBuilder_RejectsCodeBelowROM(t *testing.T) {
	if _, err := NewROMBuilder().WithCode(0x6000, 0xEA).Build(); err == nil {
		t.Error("Expected error for code below 0x8000")
	}
	if _, err := NewROMBuilder().WithPRGSize(0).Build(); err == nil {
		t.Error("Expected error for empty PRG")
	}
}

func TestROMBuilder_CHRRAM(t *testing.T) {
	cart, err := NewROMBuilder().WithCHRRAM().BuildCartridge()
	if err != nil {
		t.Fatal(err)
	}
	if !cart.HasCHRRAM() {
		t.Error("Expected CHR RAM")
	}
}
