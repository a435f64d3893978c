package compliance

import (
	"strconv"
	"unicode/utf16"
)

// Fingerprint computes a deterministic, order-sensitive digest of text for
// duplicate-post detection. It is the classic 31-base polynomial rolling
// hash over UTF-16 code units with signed 32-bit wraparound, rendered in
// base 36. Collisions are acceptable; the external duplicate store only
// compares recent values, so the hash just needs to be stable across runs
// and platforms.
func Fingerprint(text string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(text)) {
		h = h*31 + int32(unit)
	}
	return strconv.FormatInt(int64(h), 36)
}
