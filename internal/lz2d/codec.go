package lz2d

import (
	"sort"

	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/zrle"
)

// huffThresh is the zone count at and above which the serialized zone
// stream is worth Huffman-coding instead of writing as raw bytes.
const huffThresh = 16

func sortByDestination(zones []Zone) {
	sort.Slice(zones, func(i, j int) bool {
		if zones[i].DY != zones[j].DY {
			return zones[i].DY < zones[j].DY
		}
		return zones[i].DX < zones[j].DX
	})
}

// serialize packs each zone into 10 bytes: a delta-y (0 except at the start
// of a new destination row), a delta/absolute-x depending on whether a new
// row started, the absolute source position, and the zone size minus
// ZoneSeed per side.
func serialize(zones []Zone) []byte {
	out := make([]byte, 0, len(zones)*10)
	var prevDX, prevDY uint16

	for i, z := range zones {
		newRow := i == 0 || z.DY != prevDY

		var dyDelta, dxField uint16
		if newRow {
			dyDelta = z.DY - prevDY
			dxField = z.DX
		} else {
			dyDelta = 0
			dxField = z.DX - prevDX
		}

		out = append(out,
			byte(dyDelta), byte(dyDelta>>8),
			byte(dxField), byte(dxField>>8),
			byte(z.SX), byte(z.SX>>8),
			byte(z.SY), byte(z.SY>>8),
			byte(z.W-ZoneSeed),
			byte(z.H-ZoneSeed),
		)

		prevDX, prevDY = z.DX, z.DY
	}
	return out
}

func deserialize(data []byte, count int) []Zone {
	zones := make([]Zone, count)
	var prevDX, prevDY uint16

	for i := 0; i < count; i++ {
		o := i * 10
		dyDelta := uint16(data[o]) | uint16(data[o+1])<<8
		dxField := uint16(data[o+2]) | uint16(data[o+3])<<8
		sx := uint16(data[o+4]) | uint16(data[o+5])<<8
		sy := uint16(data[o+6]) | uint16(data[o+7])<<8
		wMinus := data[o+8]
		hMinus := data[o+9]

		var dx, dy uint16
		if i == 0 || dyDelta != 0 {
			dy = prevDY + dyDelta
			dx = dxField
		} else {
			dy = prevDY
			dx = prevDX + dxField
		}

		zones[i] = Zone{
			SX: sx, SY: sy,
			DX: dx, DY: dy,
			W: uint16(wMinus) + ZoneSeed,
			H: uint16(hMinus) + ZoneSeed,
		}
		prevDX, prevDY = dx, dy
	}
	return zones
}

// WriteZones sorts zones by destination and emits the count, an encoding
// selector bit, and the serialized zone stream.
func WriteZones(w *bitio.Writer, zones []Zone) {
	sortByDestination(zones)
	w.Write9(len(zones))
	if len(zones) == 0 {
		return
	}

	data := serialize(zones)
	useHuffman := len(zones) >= huffThresh
	if useHuffman {
		w.WriteBit(1)
		enc := zrle.NewEncoder(256)
		for _, b := range data {
			enc.Push(int(b))
		}
		stream := enc.Finish()
		stream.WriteTables(w)
		stream.WriteSymbols(w)
	} else {
		w.WriteBit(0)
		for _, b := range data {
			w.WriteBits(uint32(b), 8)
		}
	}
}

// ReadZones is the inverse of WriteZones.
func ReadZones(r *bitio.Reader) []Zone {
	count := r.Read9()
	if count == 0 {
		return nil
	}

	useHuffman := r.ReadBit() == 1
	data := make([]byte, count*10)
	if useHuffman {
		dec := zrle.ReadTables(r, 256, 9)
		for i := range data {
			data[i] = byte(dec.Next(r))
		}
	} else {
		for i := range data {
			data[i] = byte(r.ReadBits(8))
		}
	}

	return deserialize(data, count)
}
