package access

// Level is a three-valued access level for a document root.
// The literal spellings are part of the wire format and must not change.
type Level string

const (
	LevelNone Level = "None"
	LevelRO   Level = "RO"
	LevelRW   Level = "RW"
)

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelNone, LevelRO, LevelRW:
		return true
	}
	return false
}

// rank orders levels by how much they allow: None < RO < RW.
func (l Level) rank() int {
	switch l {
	case LevelRO:
		return 1
	case LevelRW:
		return 2
	}
	return 0
}

// AtLeast reports whether l allows at least as much as min.
func (l Level) AtLeast(min Level) bool {
	return l.rank() >= min.rank()
}

// HighestUserAccess combines multiple applicable grants into one level.
// An explicit None among the grants always forces denial, regardless of any
// other grant; otherwise the widest grant wins. An empty set resolves to None.
func HighestUserAccess(levels []Level) Level {
	hasRW, hasRO := false, false
	for _, l := range levels {
		switch l {
		case LevelNone:
			return LevelNone
		case LevelRW:
			hasRW = true
		case LevelRO:
			hasRO = true
		}
	}
	if hasRW {
		return LevelRW
	}
	if hasRO {
		return LevelRO
	}
	return LevelNone
}

// CombineWithCeiling caps a resolved access by a separate boundary.
// An RW grant widens exactly to the ceiling; an RO grant is never escalated
// above RO but is still cut off by a None ceiling; None stays None.
func CombineWithCeiling(userAccess, ceiling Level) Level {
	switch userAccess {
	case LevelRW:
		return ceiling
	case LevelRO:
		if ceiling == LevelRW {
			return LevelRO
		}
		return ceiling
	}
	return LevelNone
}
