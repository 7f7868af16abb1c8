package dmi

// Dir is one of the eight compass directions a sprite can be drawn facing.
// Each value is its own distinguishable ordinal — NORTHEAST et al. are not
// the bitwise OR of their cardinal components, per spec.md §4.2.
type Dir uint8

const (
	South Dir = iota
	North
	East
	West
	Southeast
	Southwest
	Northeast
	Northwest
)

func (d Dir) String() string {
	switch d {
	case South:
		return "SOUTH"
	case North:
		return "NORTH"
	case East:
		return "EAST"
	case West:
		return "WEST"
	case Southeast:
		return "SOUTHEAST"
	case Southwest:
		return "SOUTHWEST"
	case Northeast:
		return "NORTHEAST"
	case Northwest:
		return "NORTHWEST"
	default:
		return "UNKNOWN"
	}
}

// dirOrder is the fixed on-disk ordering in which direction tiles appear
// within a single state/frame block (spec.md §4.2).
var dirOrder = [8]Dir{South, North, East, West, Southeast, Southwest, Northeast, Northwest}

// dirsForCount returns the directions present for a given `dirs` count
// (1, 4, or 8), in on-disk order. It panics on any other count; callers
// must validate dirs via validateDirCount first.
func dirsForCount(count uint8) []Dir {
	switch count {
	case 1:
		return dirOrder[:1]
	case 4:
		return dirOrder[:4]
	case 8:
		return dirOrder[:8]
	default:
		panic("dmi: dirsForCount called with an unvalidated dirs count")
	}
}

// validateDirCount reports whether count is one of the legal `dirs` values.
func validateDirCount(count uint8) bool {
	return count == 1 || count == 4 || count == 8
}

// dirOrdinal returns the 0-based position of d within the set of directions
// present for the given dirs count, used by IconState.Image to compute a
// frame/dir index. ok is false if d is not present at that dirs count, or
// if dirsCount is not a legal dirs value.
func dirOrdinal(d Dir, dirsCount uint8) (int, bool) {
	if !validateDirCount(dirsCount) {
		return 0, false
	}
	for i, candidate := range dirsForCount(dirsCount) {
		if candidate == d {
			return i, true
		}
	}
	return 0, false
}
