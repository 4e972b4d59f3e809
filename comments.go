// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"context"
	"net/http"
	"net/url"
)

// CommentsPath is the path segment of the collection nested beneath each post.
const CommentsPath = "comments"

// Comments is a client for the comments of a single post.  Only listing
// and creation are supported by the remote API.
type Comments struct {
	client *Client
	postID string
}

// PostID returns the identifier of the post these comments belong to.
func (cc *Comments) PostID() string {
	return cc.postID
}

// List fetches every comment of the post.
func (cc *Comments) List(ctx context.Context, query url.Values) ([]Record, error) {
	return cc.client.list(ctx, cc.client.target(query, cc.postID, CommentsPath))
}

// Create adds a comment to the post.  Any identifier field is omitted from
// the request body.
func (cc *Comments) Create(ctx context.Context, r Record) (Record, error) {
	return cc.client.send(
		ctx,
		http.MethodPost,
		cc.client.target(nil, cc.postID, CommentsPath),
		r.withoutID(),
	)
}
