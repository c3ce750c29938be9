package odontogram

import (
	"errors"
	"fmt"
)

var ErrUnknownTooth = errors.New("unknown tooth")

// Permanent dentition in FDI notation, in display order.
var (
	UpperArch = []int{18, 17, 16, 15, 14, 13, 12, 11, 21, 22, 23, 24, 25, 26, 27, 28}
	LowerArch = []int{48, 47, 46, 45, 44, 43, 42, 41, 31, 32, 33, 34, 35, 36, 37, 38}
)

// ValidTooth reports whether n is a permanent tooth: quadrant 1-4, position 1-8.
func ValidTooth(n int) bool {
	quadrant, position := n/10, n%10
	return quadrant >= 1 && quadrant <= 4 && position >= 1 && position <= 8
}

func checkTooth(n int) error {
	if !ValidTooth(n) {
		return fmt.Errorf("%w: %d", ErrUnknownTooth, n)
	}
	return nil
}

// Teeth returns all 32 tooth numbers, upper arch first.
func Teeth() []int {
	out := make([]int, 0, len(UpperArch)+len(LowerArch))
	out = append(out, UpperArch...)
	return append(out, LowerArch...)
}
