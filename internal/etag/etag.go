// Package etag derives weak entity tags from an entity's identity and
// optimistic-concurrency version.
package etag

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Generate returns the weak ETag W/"<hash>" for the entity kind with id at version.
func Generate(kind string, id uint, version int) string {
	if id == 0 {
		return ""
	}

	d := xxhash.New()
	_, _ = d.WriteString(kind)
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(strconv.FormatUint(uint64(id), 10))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(strconv.Itoa(version))

	return `W/"` + strconv.FormatUint(d.Sum64(), 16) + `"`
}

// Parse extracts the opaque value from a quoted ETag.
// Handles both strong ("value") and weak (W/"value") ETags
func Parse(etagHeader string) string {
	etagHeader = strings.TrimSpace(etagHeader)
	if etagHeader == "" {
		return ""
	}

	etagHeader = strings.TrimPrefix(etagHeader, "W/")

	if len(etagHeader) >= 2 && etagHeader[0] == '"' && etagHeader[len(etagHeader)-1] == '"' {
		return etagHeader[1 : len(etagHeader)-1]
	}

	return etagHeader
}

// Match checks an If-Match header against the current ETag. An empty header
// imposes no precondition; "*" matches any existing entity. A comma-separated
// list matches when any member does.
func Match(ifMatch string, currentETag string) bool {
	ifMatch = strings.TrimSpace(ifMatch)
	if ifMatch == "" {
		return true
	}
	if ifMatch == "*" {
		return currentETag != ""
	}
	return anyMatches(ifMatch, currentETag)
}

// NoneMatch checks an If-None-Match header. It returns false when the header
// names the current ETag, meaning the client copy is fresh (304).
func NoneMatch(ifNoneMatch string, currentETag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" {
		return true
	}
	if ifNoneMatch == "*" {
		return currentETag == ""
	}
	return !anyMatches(ifNoneMatch, currentETag)
}

func anyMatches(header, currentETag string) bool {
	current := Parse(currentETag)
	if current == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		if Parse(candidate) == current {
			return true
		}
	}
	return false
}
