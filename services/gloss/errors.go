// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gloss

import "errors"

var (
	// ErrConfigurationMissing is returned when a required setting (collection
	// or field names) is empty. Fatal to the whole call: both entry points
	// abort before any note is touched.
	ErrConfigurationMissing = errors.New("gloss configuration incomplete")

	// ErrLookupFailed marks a symbol whose index query channel failed. It is
	// recovered locally (absent gloss, resolution continues) and aggregated
	// into the call summary.
	ErrLookupFailed = errors.New("symbol lookup failed")

	// ErrNoteNotFound is returned by stores when a note ID does not exist.
	ErrNoteNotFound = errors.New("note not found")
)
