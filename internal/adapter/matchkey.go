package adapter

import "strings"

// BuildMatchKey implements the wire-level contract shared by every adapter:
// "<platform>-<event_id>-<match_id>", lowercased, globally unique across
// sources.
func BuildMatchKey(platform, eventID, matchID string) string {
	return strings.ToLower(platform + "-" + eventID + "-" + matchID)
}

// NormalizeState maps an empty string to nil: several sources use "" and
// null interchangeably for "no state / national event"; null is canonical.
func NormalizeState(raw string) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return &raw
}
