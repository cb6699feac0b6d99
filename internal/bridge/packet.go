package bridge

import (
	"encoding/binary"
	"fmt"

	"github.com/mapmarks/overlay/internal/colorutil"
	"github.com/mapmarks/overlay/internal/util"
	"github.com/mapmarks/overlay/pkg/core"
)

const (
	// PacketSize is the fixed length of every frame written to the device.
	PacketSize = 50
	// LEDCount is the number of addressable LEDs; marker n drives LED n.
	LEDCount = 16
)

// TriggerHeader opens a memory trigger frame.
var TriggerHeader = [4]byte{0xFF, 0xFE, 0xFD, 0xFC}

// MemoryTrigger builds the frame that flashes one marker's LED.
// Layout: header, marker number, R, G, B, zero padding.
func MemoryTrigger(number int, r, g, b uint8) []byte {
	p := make([]byte, PacketSize)
	copy(p, TriggerHeader[:])
	if number >= 0 && number <= 0xFF {
		p[4] = byte(number)
	}
	p[5], p[6], p[7] = r, g, b
	return p
}

// TriggerInts converts a frame to the JSON integer array served to bridges.
func TriggerInts(p []byte) []int {
	out := make([]int, len(p))
	for i, v := range p {
		out[i] = int(v)
	}
	return out
}

// TriggerBytes validates a served trigger array and converts it back to a frame.
func TriggerBytes(data []int) ([]byte, error) {
	if len(data) != PacketSize {
		return nil, fmt.Errorf("invalid trigger data length: %d", len(data))
	}
	p := make([]byte, PacketSize)
	for i, v := range data {
		if v < 0 || v > 0xFF {
			return nil, fmt.Errorf("invalid trigger byte %d at %d", v, i)
		}
		p[i] = byte(v)
	}
	return p, nil
}

// PositionMask sets bit 16-n for every marker number n in 1..16.
func PositionMask(numbers []int) uint16 {
	var mask uint16
	for _, n := range numbers {
		if n >= 1 && n <= LEDCount {
			mask |= 1 << (LEDCount - n)
		}
	}
	return mask
}

// VisiblePacket builds the regular frame: a big-endian position mask
// followed by one RGB triple per LED. LEDs of markers that are not visible
// stay off; visible markers with an unknown color light white.
func VisiblePacket(markers []core.VisibleMarker) []byte {
	var numbers []int
	colors := make(map[int][3]byte)
	for _, m := range markers {
		n, ok := util.MarkerNumber(m.Name)
		if !ok {
			continue
		}
		numbers = append(numbers, n)
		r, g, b, _ := colorutil.RGB(m.Color)
		colors[n] = [3]byte{r, g, b}
	}

	p := make([]byte, PacketSize)
	binary.BigEndian.PutUint16(p, PositionMask(numbers))
	for led := 1; led <= LEDCount; led++ {
		c, ok := colors[led]
		if !ok {
			continue
		}
		off := 2 + (led-1)*3
		p[off], p[off+1], p[off+2] = c[0], c[1], c[2]
	}
	return p
}
