// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalserver

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by a Store when a post does not exist.
var ErrNotFound = errors.New("post not found")

// Store is the persistence layer for posts and their comments.  Identifiers
// are assigned sequentially, starting at 1.  Timestamps are assigned by the
// Store in UTC.
type Store interface {
	// ListPosts returns every post, ordered by identifier.
	ListPosts(context.Context) ([]Post, error)

	// GetPost returns the post with the given identifier.
	GetPost(context.Context, int64) (Post, error)

	// CreatePost assigns an identifier and timestamps to a new post and saves it.
	// The identifier and timestamps of the given post are ignored.
	CreatePost(context.Context, Post) (Post, error)

	// UpdatePost replaces an existing post, preserving its creation time.
	UpdatePost(context.Context, Post) (Post, error)

	// DeletePost removes a post along with its comments.
	DeletePost(context.Context, int64) error

	// ListComments returns the comments of a post, ordered by identifier.
	ListComments(context.Context, int64) ([]Comment, error)

	// CreateComment adds a comment to an existing post.
	CreateComment(context.Context, Comment) (Comment, error)
}

// Clock is the source of timestamps for a Store.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Millisecond)
	}

	return c().UTC()
}

// MemoryStore is a Store that keeps everything in memory.
type MemoryStore struct {
	lock  sync.RWMutex
	clock Clock

	lastPostID    int64
	lastCommentID int64
	posts         map[int64]Post
	comments      map[int64][]Comment
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.  A nil clock uses the system time.
func NewMemoryStore(clock Clock) *MemoryStore {
	return &MemoryStore{
		clock:    clock,
		posts:    make(map[int64]Post),
		comments: make(map[int64][]Comment),
	}
}

func (ms *MemoryStore) ListPosts(context.Context) ([]Post, error) {
	ms.lock.RLock()
	posts := make([]Post, 0, len(ms.posts))
	for _, p := range ms.posts {
		posts = append(posts, p)
	}

	ms.lock.RUnlock()
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})

	return posts, nil
}

func (ms *MemoryStore) GetPost(_ context.Context, id int64) (Post, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	p, ok := ms.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}

	return p, nil
}

func (ms *MemoryStore) CreatePost(_ context.Context, p Post) (Post, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	ms.lastPostID++
	p.ID = ms.lastPostID
	p.CreatedAt = ms.clock.now()
	p.UpdatedAt = p.CreatedAt
	ms.posts[p.ID] = p
	return p, nil
}

func (ms *MemoryStore) UpdatePost(_ context.Context, p Post) (Post, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	existing, ok := ms.posts[p.ID]
	if !ok {
		return Post{}, ErrNotFound
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = ms.clock.now()
	ms.posts[p.ID] = p
	return p, nil
}

func (ms *MemoryStore) DeletePost(_ context.Context, id int64) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if _, ok := ms.posts[id]; !ok {
		return ErrNotFound
	}

	delete(ms.posts, id)
	delete(ms.comments, id)
	return nil
}

func (ms *MemoryStore) ListComments(_ context.Context, postID int64) ([]Comment, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	if _, ok := ms.posts[postID]; !ok {
		return nil, ErrNotFound
	}

	return append([]Comment{}, ms.comments[postID]...), nil
}

func (ms *MemoryStore) CreateComment(_ context.Context, c Comment) (Comment, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if _, ok := ms.posts[c.PostID]; !ok {
		return Comment{}, ErrNotFound
	}

	ms.lastCommentID++
	c.ID = ms.lastCommentID
	c.CreatedAt = ms.clock.now()
	c.UpdatedAt = c.CreatedAt
	ms.comments[c.PostID] = append(ms.comments[c.PostID], c)
	return c, nil
}
