// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"time"

	"github.com/spf13/cast"
)

const (
	// IDField is the name of the identifier field of every record.
	IDField = "id"

	// CreatedAtField is the creation timestamp field.
	CreatedAtField = "created_at"

	// UpdatedAtField is the modification timestamp field.
	UpdatedAtField = "updated_at"
)

// Record is a single resource in a remote collection.  Fields hold the decoded
// JSON values, with numbers decoded as json.Number so that identifiers survive
// exactly.  Date fields hold time.Time once normalized.
type Record map[string]any

// ID returns the identifier of this record, formatted for use in a URL path.
// The second return is false when this record is new.
func (r Record) ID() (string, bool) {
	v, ok := r[IDField]
	if !ok || v == nil {
		return "", false
	}

	id, err := cast.ToStringE(v)
	if err != nil || len(id) == 0 || id == "0" {
		return "", false
	}

	return id, true
}

// IsNew tests if this record has never been saved.  A record is new when its
// identifier is absent, null, empty, or zero.
func (r Record) IsNew() bool {
	_, ok := r.ID()
	return !ok
}

// Time returns the value of a date field.  The second return is false if
// the field is absent or was not normalized into a time.Time.
func (r Record) Time(field string) (time.Time, bool) {
	t, ok := r[field].(time.Time)
	return t, ok
}

// String returns a field formatted as a string, or the empty string if
// the field is absent or cannot be formatted.
func (r Record) String(field string) string {
	return cast.ToString(r[field])
}

// Clone returns a shallow copy of this record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}

	return clone
}

// withoutID returns a shallow copy of this record with the identifier removed.
func (r Record) withoutID() Record {
	clone := r.Clone()
	delete(clone, IDField)
	return clone
}
