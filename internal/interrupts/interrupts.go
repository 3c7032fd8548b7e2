// Package interrupts provides the NMI/IRQ latch shared by the CPU and the
// devices that interrupt it.
package interrupts

// Interrupts holds the two sticky interrupt lines. The PPU raises NMI at the
// start of vblank; the CPU clears a line when it services it.
type Interrupts struct {
	nmi bool
	irq bool
}

// New returns a latch with both lines deasserted.
func New() *Interrupts {
	return &Interrupts{}
}

func (i *Interrupts) AssertNMI() {
	i.nmi = true
}

func (i *Interrupts) DeassertNMI() {
	i.nmi = false
}

func (i *Interrupts) IsNMIAsserted() bool {
	return i.nmi
}

func (i *Interrupts) AssertIRQ() {
	i.irq = true
}

func (i *Interrupts) DeassertIRQ() {
	i.irq = false
}

func (i *Interrupts) IsIRQAsserted() bool {
	return i.irq
}

// Reset deasserts both lines.
func (i *Interrupts) Reset() {
	i.nmi = false
	i.irq = false
}
