package bytes

import "fmt"

var units = [...]string{"B", "KB", "MB", "GB", "TB"}

// FmtMem renders n as "<major><unit> <minor><unit>", e.g. "2KB 512B" or "3MB 0KB".
func FmtMem(n uint64) string {
	unit := 0
	for unit < len(units)-1 && n>>(10*(unit+1)) > 0 {
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%dB", n)
	}

	shift := uint(10 * unit)
	major := n >> shift
	minor := (n & (1<<shift - 1)) >> (shift - 10)
	return fmt.Sprintf("%d%s %d%s", major, units[unit], minor, units[unit-1])
}
