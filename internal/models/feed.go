// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package models defines the shared data types exchanged between the feed
// orchestrator, the content repositories, and the HTTP layer.
package models

import (
	"time"
)

// ContentType discriminates how a feed item is rendered.
type ContentType string

const (
	// ContentTypeVideo is a single short video clip.
	ContentTypeVideo ContentType = "video"
	// ContentTypeGallery is a swipeable set of photos.
	ContentTypeGallery ContentType = "gallery"
)

// CreatorSummary is the slice of a creator profile embedded in a feed item.
type CreatorSummary struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsFollowed  bool   `json:"is_followed"`
}

// InteractionCounts carries the current engagement counters for a content item.
// Values are read from the engagement aggregate row and are never negative.
type InteractionCounts struct {
	Likes  int64 `json:"likes"`
	Saves  int64 `json:"saves"`
	Shares int64 `json:"shares"`
	Views  int64 `json:"views"`
}

// ViewerState carries viewer-specific relationship flags for a feed item.
type ViewerState struct {
	IsLiked bool `json:"is_liked"`
	IsSaved bool `json:"is_saved"`
}

// FeedItem is a hydrated, display-ready feed record.
//
// Feed items are never cached as a unit: the batch cache stores bare content
// ids and items are re-hydrated on every page so counts and viewer flags stay
// fresh even when the identifier batch is stale.
//
// MediaURLs is populated only for gallery content; video content carries a
// single VideoURL. This shaping happens at hydration time, not in the
// orchestrator.
type FeedItem struct {
	ContentID    string            `json:"content_id"`
	Type         ContentType       `json:"type"`
	Caption      string            `json:"caption,omitempty"`
	Language     string            `json:"language,omitempty"`
	Category     string            `json:"category,omitempty"`
	VideoURL     string            `json:"video_url,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	MediaURLs    []string          `json:"media_urls,omitempty"`
	DurationSec  int               `json:"duration_sec,omitempty"`
	Creator      CreatorSummary    `json:"creator"`
	Counts       InteractionCounts `json:"counts"`
	Viewer       ViewerState       `json:"viewer"`
	PublishedAt  time.Time         `json:"published_at"`
}

// FeedPage is one page of a feed plus its pagination state.
//
// NextCursor is an opaque token; clients echo it back unmodified. It is empty
// when HasNext is false.
type FeedPage struct {
	Content    []FeedItem `json:"content"`
	NextCursor string     `json:"next_cursor,omitempty"`
	HasNext    bool       `json:"has_next"`
}
