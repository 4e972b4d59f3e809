// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package postalserver is a small backend for a blog post collection.  It
serves the same wire contract that package postal consumes:

	GET    /posts
	POST   /posts
	GET    /posts/{id}[.json]
	PUT    /posts/{id}[.json]
	PATCH  /posts/{id}[.json]
	DELETE /posts/{id}[.json]
	GET    /posts/{id}/comments
	POST   /posts/{id}/comments

Posts require a title and content, and comments require content.  A blank
required field produces a 422 response whose body maps each field to its
messages.  Records are kept in a Store, either in memory or in Redis.
*/
package postalserver
