package output

import "fmt"

// UCSC genome binning scheme: five bin levels covering spans of 128kb up
// to 512Mb, addressed from a zero-based half-open interval.
const (
	binFirstShift = 17
	binNextShift  = 3
	binRangeMax   = 1 << 29
)

var binOffsets = []int{512 + 64 + 8 + 1, 64 + 8 + 1, 8 + 1, 1, 0}

// BinFromRange computes the UCSC bin for the zero-based half-open interval
// [start, end).
func BinFromRange(start, end int64) (int, error) {
	if start < 0 || end <= start {
		return 0, fmt.Errorf("invalid interval [%d, %d)", start, end)
	}
	if end > binRangeMax {
		return 0, fmt.Errorf("interval end %d exceeds binnable range %d", end, binRangeMax)
	}

	startBin := start >> binFirstShift
	endBin := (end - 1) >> binFirstShift
	for _, offset := range binOffsets {
		if startBin == endBin {
			return offset + int(startBin), nil
		}
		startBin >>= binNextShift
		endBin >>= binNextShift
	}
	return 0, fmt.Errorf("interval [%d, %d) out of range for binning", start, end)
}
