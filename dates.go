// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import "github.com/spf13/cast"

// DefaultDateFields are the fields normalized when no others are configured.
var DefaultDateFields = []string{CreatedAtField, UpdatedAtField}

// NormalizeDates replaces each named field holding a parseable date string
// with the parsed time.Time.  Fields that are absent, not strings, or not
// parseable are left untouched.  The record is modified in place and returned.
//
// Parsing accepts RFC 3339 with or without fractional seconds, bare dates,
// and the other layouts understood by github.com/spf13/cast.  Layouts
// without a zone are interpreted as UTC.
func NormalizeDates(r Record, fields ...string) Record {
	for _, f := range fields {
		if s, ok := r[f].(string); ok {
			if t, err := cast.ToTimeE(s); err == nil {
				r[f] = t
			}
		}
	}

	return r
}
