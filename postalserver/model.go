// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalserver

import (
	"encoding/json"
	"strings"
	"time"
)

// BlankMessage is the validation message for a missing required field.
const BlankMessage = "can't be blank"

// Post is a single blog post.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a comment on a Post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldErrors maps field names onto validation messages.  It is the body of
// every 422 response.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Error allows FieldErrors to be returned as an error.
func (fe FieldErrors) Error() string {
	var o strings.Builder
	o.WriteString("validation failed:")
	for field, messages := range fe {
		for _, m := range messages {
			o.WriteString(" ")
			o.WriteString(field)
			o.WriteString(" ")
			o.WriteString(m)
			o.WriteString(";")
		}
	}

	return o.String()
}

func blank(v string) bool {
	return len(strings.TrimSpace(v)) == 0
}

// Validate checks that the post has a title and content.
func (p Post) Validate() error {
	fe := FieldErrors{}
	if blank(p.Title) {
		fe.add("title", BlankMessage)
	}

	if blank(p.Content) {
		fe.add("content", BlankMessage)
	}

	if len(fe) > 0 {
		return fe
	}

	return nil
}

// Validate checks that the comment has content.
func (c Comment) Validate() error {
	if blank(c.Content) {
		return FieldErrors{"content": {BlankMessage}}
	}

	return nil
}

// postParams are the assignable fields of a post.  Nil fields were absent
// from the request.
type postParams struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (pp postParams) applyTo(p *Post) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}

	if pp.Content != nil {
		p.Content = *pp.Content
	}
}

type commentParams struct {
	Content *string `json:"content"`
}

// unwrap returns the member of body named by root when body is an object
// with that member, e.g. {"post": {...}}.  Otherwise, body is returned as is.
func unwrap(body []byte, root string) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}

	if inner, ok := envelope[root]; ok && len(inner) > 0 && inner[0] == '{' {
		return inner
	}

	return body
}
