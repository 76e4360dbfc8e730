// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks that required configuration is present and valid.
// Struct tags cover field-level constraints; cross-field rules are
// checked explicitly afterwards.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config field %s: failed %q constraint", first.Namespace(), first.Tag())
		}
		return err
	}

	if c.Feed.DefaultPageSize > c.Feed.MaxPageSize {
		return fmt.Errorf("feed.default_page_size (%d) must not exceed feed.max_page_size (%d)",
			c.Feed.DefaultPageSize, c.Feed.MaxPageSize)
	}
	if c.Feed.MaxPageSize > c.Feed.BatchSize {
		return fmt.Errorf("feed.max_page_size (%d) must not exceed feed.batch_size (%d)",
			c.Feed.MaxPageSize, c.Feed.BatchSize)
	}
	if c.Feed.BatchTTL <= 0 {
		return fmt.Errorf("feed.batch_ttl must be positive")
	}
	if c.Recommender.Timeout <= 0 {
		return fmt.Errorf("recommender.timeout must be positive")
	}

	return nil
}
