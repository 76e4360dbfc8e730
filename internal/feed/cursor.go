// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package feed assembles personalized feed pages: ranked id batches from the
// recommendation provider, cached per user, hydrated into display-ready
// items on every request.
package feed

import (
	"strconv"
)

// The main feed cursor is an absolute offset into the user's ranked id
// stream, rendered in decimal. It is opaque to clients: they echo it back
// unmodified and must not derive meaning from it. Offsets survive cache
// regeneration because they address the logical stream, not a cache key.
//
// The following feed uses the content id of the last item on the page as its
// cursor; the repository resolves it to a keyset position.

// encodeOffsetCursor renders an offset as an opaque cursor.
func encodeOffsetCursor(offset int64) string {
	return strconv.FormatInt(offset, 10)
}

// decodeOffsetCursor parses an offset cursor. Anything unparseable or
// negative, including the empty cursor of a first request, means the start
// of the feed.
func decodeOffsetCursor(cursor string) int64 {
	if cursor == "" {
		return 0
	}
	offset, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
