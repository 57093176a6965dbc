// Package timeid generates chronologically-sortable identifiers for
// conversations and recordings. The creation timestamp is decomposed into
// fixed-width dash-separated fields so lexical order equals chronological
// order, down to millisecond resolution.
package timeid

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layout is the identifier shape: YYYY-MM-DD-HH-MM-SS-mmm.
const Layout = "2006-01-02-15-04-05"

var idPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}-\d{3}$`)

// Legacy prefixes carried by identifiers written under the pre-versioned
// storage format. Clean strips them; nothing writes them anymore.
const (
	legacyConversationPrefix = "conv-"
	legacyRecordingPrefix    = "rec-"
)

// New returns the identifier for the given instant.
func New(t time.Time) string {
	return fmt.Sprintf("%s-%03d", t.Format(Layout), t.Nanosecond()/int(time.Millisecond))
}

// Valid reports whether id has the canonical decomposed-timestamp shape.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// Clean normalizes a possibly legacy-prefixed identifier to the canonical
// scheme. Unprefixed ids pass through unchanged.
func Clean(id string) string {
	id = strings.TrimPrefix(id, legacyConversationPrefix)
	return strings.TrimPrefix(id, legacyRecordingPrefix)
}

// HasLegacyPrefix reports whether id still carries an old-format prefix.
func HasLegacyPrefix(id string) bool {
	return strings.HasPrefix(id, legacyConversationPrefix) || strings.HasPrefix(id, legacyRecordingPrefix)
}
