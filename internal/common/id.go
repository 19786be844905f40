package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunID generates a unique run ID with the "run_" prefix
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewDiscoveryID generates a unique discovery row ID with the "disc_" prefix
func NewDiscoveryID() string {
	return "disc_" + uuid.New().String()
}

// ExternalID derives the stable external identifier for a discovered item.
// Format: <platform>_<lastPathSegment>_<runUnixTs>. Collisions are possible
// but rare; row uniqueness is enforced by the store's primary key.
func ExternalID(platform, itemURL string, runStarted time.Time) string {
	segment := LastPathSegment(itemURL)
	if segment == "" {
		segment = "item"
	}
	return fmt.Sprintf("%s_%s_%d", platform, segment, runStarted.Unix())
}

// ParseExternalID splits an external identifier back into platform, item
// segment and run timestamp. The item segment may itself contain underscores,
// so the platform is the first field and the timestamp the last.
func ParseExternalID(id string) (platform, segment string, runStarted time.Time, err error) {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return "", "", time.Time{}, fmt.Errorf("malformed external id: %s", id)
	}

	unix, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("malformed external id timestamp: %s", id)
	}

	platform = parts[0]
	segment = strings.Join(parts[1:len(parts)-1], "_")
	return platform, segment, time.Unix(unix, 0), nil
}

// LastPathSegment returns the final non-empty path segment of a URL,
// stripped of query string and fragment.
func LastPathSegment(rawURL string) string {
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
