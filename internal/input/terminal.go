package input

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// DefaultTerminalKeys maps A, B, Select, Start, Up, Down, Left, Right to
// keyboard characters.
const DefaultTerminalKeys = ".,nmwsad"

const ctrlC = 0x03

// TerminalKeypad reads single keystrokes from a raw-mode terminal. A terminal
// reports no key releases, so a key counts as released on the first poll that
// finds no new byte.
type TerminalKeypad struct {
	keys     string
	pending  chan byte
	pressing byte
	buffer   Buttons

	interrupt     chan struct{}
	interruptOnce sync.Once

	fd       int
	oldState *term.State
}

// NewTerminalKeypad puts in into raw mode when it is a terminal and starts
// reading keystrokes from it. keys must name 8 distinct characters.
func NewTerminalKeypad(in *os.File, keys string) (*TerminalKeypad, error) {
	k, err := newTerminalKeypad(keys)
	if err != nil {
		return nil, err
	}

	k.fd = int(in.Fd())
	if term.IsTerminal(k.fd) {
		state, err := term.MakeRaw(k.fd)
		if err != nil {
			return nil, fmt.Errorf("set raw mode: %w", err)
		}
		k.oldState = state
	}

	go k.readLoop(in)
	return k, nil
}

func newTerminalKeypad(keys string) (*TerminalKeypad, error) {
	if keys == "" {
		keys = DefaultTerminalKeys
	}
	if len(keys) != int(buttonCount) {
		return nil, fmt.Errorf("terminal key map %q: need %d keys", keys, buttonCount)
	}
	for i := 0; i < len(keys); i++ {
		if strings.IndexByte(keys, keys[i]) != i {
			return nil, fmt.Errorf("terminal key map %q: duplicate key %q", keys, keys[i])
		}
	}
	return &TerminalKeypad{
		keys:      keys,
		pending:   make(chan byte, 64),
		interrupt: make(chan struct{}),
	}, nil
}

func (k *TerminalKeypad) readLoop(r io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			k.feed(buf[0])
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("[INPUT] Terminal read stopped: %v", err)
			}
			return
		}
	}
}

// feed queues a keystroke, dropping it when the queue is full
func (k *TerminalKeypad) feed(b byte) {
	if b == ctrlC {
		k.interruptOnce.Do(func() { close(k.interrupt) })
		return
	}
	select {
	case k.pending <- b:
	default:
	}
}

// Poll consumes at most one keystroke and implements KeySource
func (k *TerminalKeypad) Poll() Buttons {
	var key byte
	select {
	case key = <-k.pending:
		k.setKey(key, true)
	default:
		if k.pressing != 0 {
			k.setKey(k.pressing, false)
		}
	}
	k.pressing = key
	return k.buffer
}

func (k *TerminalKeypad) setKey(key byte, pressed bool) {
	if i := strings.IndexByte(k.keys, key); i >= 0 {
		k.buffer[i] = pressed
	}
}

// Interrupted is closed when Ctrl-C arrives, which raw mode no longer turns
// into a signal.
func (k *TerminalKeypad) Interrupted() <-chan struct{} {
	return k.interrupt
}

// Close restores the terminal state
func (k *TerminalKeypad) Close() error {
	if k.oldState == nil {
		return nil
	}
	err := term.Restore(k.fd, k.oldState)
	k.oldState = nil
	return err
}
