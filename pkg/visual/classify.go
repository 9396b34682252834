package visual

import "strings"

// Class is the styling category of an edge.
type Class string

const (
	ClassHosting Class = "hosting"
	ClassStorage Class = "storage"
	ClassNetwork Class = "network"
	ClassOther   Class = "other"
)

// Relation vocabulary. The service speaks French; the English forms are
// accepted as well.
var (
	hostingMarkers = []string{"Hébergée par", "Membre de", "hosted by", "hosted-by", "member of", "member-of"}
	storageMarkers = []string{"Stockée sur", "stored on", "stored-on"}
	networkMarkers = []string{"Connectée à", "connected to", "connected-to"}
)

// Classify maps a relation label to its styling class by case-sensitive
// substring match. Unknown labels are [ClassOther].
func Classify(label string) Class {
	switch {
	case containsAny(label, hostingMarkers):
		return ClassHosting
	case containsAny(label, storageMarkers):
		return ClassStorage
	case containsAny(label, networkMarkers):
		return ClassNetwork
	default:
		return ClassOther
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
