package stowgate

import (
	"math"
	"strings"
)

type rangeState int

const (
	rangeFirstDigit rangeState = iota
	rangeFirstDigitRun
	rangeLastDigit
	rangeLastDigitRun
	rangeDone
)

// ParseRange parses the first range of a Range header value against an object of
// the given size. It returns ok=false when the header carries no usable range, in
// which case the whole object is served.
//
// Accepted forms after "bytes=": "s-e", "s-" (end defaults to size-1) and "-e"
// (start 0). A ',', '&' or ';' ends the first range; anything after it is ignored.
// Bounds against size are not checked here, see Gateway.
func ParseRange(header string, size uint64) (ByteRange, bool) {
	i := strings.Index(header, "bytes=")
	if i < 0 || size == 0 {
		return ByteRange{}, false
	}
	spec := header[i+len("bytes="):]

	var start, end uint64
	state := rangeFirstDigit

scan:
	for p := 0; p < len(spec); p++ {
		c := spec[p]

		switch state {
		case rangeFirstDigit, rangeFirstDigitRun:
			if c == '-' {
				state = rangeLastDigit
				continue
			}
			if !isDigit(c) || start > (math.MaxUint64-9)/10 {
				return ByteRange{}, false
			}
			start = start*10 + uint64(c-'0')
			state = rangeFirstDigitRun

		case rangeLastDigit, rangeLastDigitRun:
			if isRangeSeparator(c) {
				if state == rangeLastDigit {
					end = size - 1
				}
				state = rangeDone
				break scan
			}
			if !isDigit(c) || end > (math.MaxUint64-9)/10 {
				return ByteRange{}, false
			}
			end = end*10 + uint64(c-'0')
			state = rangeLastDigitRun
		}
	}

	switch state {
	case rangeLastDigit:
		end = size - 1
	case rangeLastDigitRun, rangeDone:
	default:
		return ByteRange{}, false
	}

	if start > end {
		return ByteRange{}, false
	}

	return ByteRange{Start: start, End: end}, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isRangeSeparator(c byte) bool {
	return c == ',' || c == '&' || c == ';'
}
