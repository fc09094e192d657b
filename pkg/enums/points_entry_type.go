package enums

import "fmt"

// PointsEntryType labels loyalty ledger entries. Earned entries carry
// positive amounts, used entries negative ones.
type PointsEntryType string

const (
	PointsEntryTypeEarned PointsEntryType = "earned"
	PointsEntryTypeUsed   PointsEntryType = "used"
)

var validPointsEntryTypes = []PointsEntryType{
	PointsEntryTypeEarned,
	PointsEntryTypeUsed,
}

// IsValid reports whether the value is a known PointsEntryType.
func (t PointsEntryType) IsValid() bool {
	for _, candidate := range validPointsEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePointsEntryType converts raw input into a PointsEntryType.
func ParsePointsEntryType(value string) (PointsEntryType, error) {
	for _, candidate := range validPointsEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid points entry type %q", value)
}
