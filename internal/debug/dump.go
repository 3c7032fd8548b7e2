// Package debug provides trace and dump helpers for inspecting a running
// machine.
package debug

import (
	"fmt"
	"io"
	"strings"
)

const bytesPerRow = 16

// HexDump writes data as rows of 16 bytes with an extra gap after the
// eighth, each row prefixed by its offset.
func HexDump(w io.Writer, data []uint8) error {
	var sb strings.Builder
	for offset := 0; offset < len(data); offset += bytesPerRow {
		sb.Reset()
		fmt.Fprintf(&sb, "%04X:", offset)
		end := min(offset+bytesPerRow, len(data))
		for i := offset; i < end; i++ {
			if (i-offset)%8 == 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, " %02X", data[i])
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
