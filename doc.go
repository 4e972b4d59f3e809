// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package postal is a client for a remote REST collection, by default a
collection of blog posts served under /posts.

A Client issues the usual CRUD operations against the collection:

	client, err := postal.New(postal.Config{BaseURL: "http://localhost:3000"})
	posts, err := client.List(ctx, nil)
	post, err := client.Get(ctx, "2")
	saved, err := client.Save(ctx, postal.Record{"title": "Hello", "content": "World"})

Every response is post-processed so that the created_at and updated_at fields,
when they hold a parseable date, come back as time.Time values.

Lookups driven by a sequence of identifiers, such as a selection in a user
interface, can use a Stream.  A Stream has "latest wins" semantics: submitting
a new identifier cancels any lookup still in flight, and the result of a
superseded lookup is never delivered.

Package postal also exposes Provide, which builds a Client within an uber/fx
application from viper configuration.
*/
package postal
