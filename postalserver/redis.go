// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// DefaultKeyPrefix is the prefix of every key written by a RedisStore.
const DefaultKeyPrefix = "postal"

// RedisConfig is the unmarshalable configuration for a RedisStore.
type RedisConfig struct {
	// Address is the host:port of the Redis server.  If unset, no RedisStore
	// is configured.
	Address string

	// Username and Password are the optional credentials for Redis.
	Username string
	Password string

	// DB is the Redis database number.
	DB int

	// KeyPrefix namespaces all keys.  DefaultKeyPrefix is used if unset.
	KeyPrefix string
}

// Enabled tests if this configuration names a Redis server.
func (rc RedisConfig) Enabled() bool {
	return len(rc.Address) > 0
}

// NewClient creates a go-redis client from this configuration.
func (rc RedisConfig) NewClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     rc.Address,
		Username: rc.Username,
		Password: rc.Password,
		DB:       rc.DB,
	})
}

// RedisStore is a Store backed by Redis.  Each record is a JSON string, and
// each collection is a sorted set of identifiers scored by identifier.
type RedisStore struct {
	client *redis.Client
	clock  Clock
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore using the given client.  An empty prefix
// is replaced with DefaultKeyPrefix, and a nil clock uses the system time.
func NewRedisStore(client *redis.Client, prefix string, clock Clock) *RedisStore {
	if len(prefix) == 0 {
		prefix = DefaultKeyPrefix
	}

	return &RedisStore{
		client: client,
		clock:  clock,
		prefix: prefix,
	}
}

func (rs *RedisStore) key(parts ...any) string {
	k := rs.prefix
	for _, p := range parts {
		k += fmt.Sprintf(":%v", p)
	}

	return k
}

func (rs *RedisStore) postKey(id int64) string { return rs.key("post", id) }
func (rs *RedisStore) postsKey() string { return rs.key("posts") }
func (rs *RedisStore) commentKey(id int64) string { return rs.key("comment", id) }
func (rs *RedisStore) commentsKey(postID int64) string { return rs.key("post", postID, "comments") }

// load fetches the JSON values of the members of a sorted set, in score order,
// and decodes each using the given function.
func (rs *RedisStore) load(ctx context.Context, setKey string, keyFor func(int64) string, decode func([]byte) error) error {
	members, err := rs.client.ZRange(ctx, setKey, 0, -1).Result()
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", setKey)
	}

	if len(members) == 0 {
		return nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid member %q of %s", m, setKey)
		}

		keys = append(keys, keyFor(id))
	}

	values, err := rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return errors.Wrap(err, "unable to read records")
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// removed between ZRANGE and MGET
			continue
		}

		if err := decode([]byte(s)); err != nil {
			return errors.Wrap(err, "unable to decode record")
		}
	}

	return nil
}

func (rs *RedisStore) getPost(ctx context.Context, id int64) (Post, error) {
	data, err := rs.client.Get(ctx, rs.postKey(id)).Bytes()
	if err == redis.Nil {
		return Post{}, ErrNotFound
	} else if err != nil {
		return Post{}, errors.Wrapf(err, "unable to read post %d", id)
	}

	var p Post
	if err := json.Unmarshal(data, &p); err != nil {
		return Post{}, errors.Wrapf(err, "unable to decode post %d", id)
	}

	return p, nil
}

func (rs *RedisStore) savePost(ctx context.Context, p Post) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, rs.postKey(p.ID), data, 0)
		pipe.ZAdd(ctx, rs.postsKey(), &redis.Z{Score: float64(p.ID), Member: p.ID})
		return nil
	})

	return errors.Wrapf(err, "unable to save post %d", p.ID)
}

func (rs *RedisStore) ListPosts(ctx context.Context) ([]Post, error) {
	posts := []Post{}
	err := rs.load(ctx, rs.postsKey(), rs.postKey, func(data []byte) error {
		var p Post
		err := json.Unmarshal(data, &p)
		posts = append(posts, p)
		return err
	})

	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (rs *RedisStore) GetPost(ctx context.Context, id int64) (Post, error) {
	return rs.getPost(ctx, id)
}

func (rs *RedisStore) CreatePost(ctx context.Context, p Post) (Post, error) {
	id, err := rs.client.Incr(ctx, rs.key("posts", "seq")).Result()
	if err != nil {
		return Post{}, errors.Wrap(err, "unable to allocate a post identifier")
	}

	p.ID = id
	p.CreatedAt = rs.clock.now()
	p.UpdatedAt = p.CreatedAt
	if err := rs.savePost(ctx, p); err != nil {
		return Post{}, err
	}

	return p, nil
}

func (rs *RedisStore) UpdatePost(ctx context.Context, p Post) (Post, error) {
	existing, err := rs.getPost(ctx, p.ID)
	if err != nil {
		return Post{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = rs.clock.now()
	if err := rs.savePost(ctx, p); err != nil {
		return Post{}, err
	}

	return p, nil
}

func (rs *RedisStore) DeletePost(ctx context.Context, id int64) error {
	if _, err := rs.getPost(ctx, id); err != nil {
		return err
	}

	commentIDs, err := rs.client.ZRange(ctx, rs.commentsKey(id), 0, -1).Result()
	if err != nil {
		return errors.Wrapf(err, "unable to read comments of post %d", id)
	}

	keys := []string{rs.postKey(id), rs.commentsKey(id)}
	for _, c := range commentIDs {
		keys = append(keys, rs.key("comment", c))
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, rs.postsKey(), id)
		return nil
	})

	return errors.Wrapf(err, "unable to delete post %d", id)
}

func (rs *RedisStore) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	if _, err := rs.getPost(ctx, postID); err != nil {
		return nil, err
	}

	comments := []Comment{}
	err := rs.load(ctx, rs.commentsKey(postID), rs.commentKey, func(data []byte) error {
		var c Comment
		err := json.Unmarshal(data, &c)
		comments = append(comments, c)
		return err
	})

	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (rs *RedisStore) CreateComment(ctx context.Context, c Comment) (Comment, error) {
	if _, err := rs.getPost(ctx, c.PostID); err != nil {
		return Comment{}, err
	}

	id, err := rs.client.Incr(ctx, rs.key("comments", "seq")).Result()
	if err != nil {
		return Comment{}, errors.Wrap(err, "unable to allocate a comment identifier")
	}

	c.ID = id
	c.CreatedAt = rs.clock.now()
	c.UpdatedAt = c.CreatedAt
	data, err := json.Marshal(c)
	if err != nil {
		return Comment{}, err
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, rs.commentKey(c.ID), data, 0)
		pipe.ZAdd(ctx, rs.commentsKey(c.PostID), &redis.Z{Score: float64(c.ID), Member: c.ID})
		return nil
	})

	if err != nil {
		return Comment{}, errors.Wrapf(err, "unable to save comment %d", c.ID)
	}

	return c, nil
}
