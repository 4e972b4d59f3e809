// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/xmidt-org/postal/postalhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// HTTPClient is the transport behavior required by a Client.  *http.Client
// implements this interface.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Option is a configurable option for a Client.
type Option interface {
	apply(*Client) error
}

type optionFunc func(*Client) error

func (of optionFunc) apply(c *Client) error { return of(c) }

// WithHTTPClient sets the transport used by the Client.  When this option is
// used, Config.HTTP is ignored along with any WithMiddleware options.
func WithHTTPClient(hc HTTPClient) Option {
	return optionFunc(func(c *Client) error {
		if hc == nil {
			return errors.New("the HTTPClient cannot be nil")
		}

		c.http = hc
		return nil
	})
}

// WithLogger sets the logger for the Client and any Streams it creates.
// A nil logger leaves logging disabled.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *Client) error {
		if l != nil {
			c.logger = l
		}

		return nil
	})
}

// WithMiddleware adds round tripper decorators to the *http.Client built
// from Config.HTTP.  Decorators are applied in the order given, after the
// request ID decorator and before request logging.
func WithMiddleware(ctors ...postalhttp.RoundTripperConstructor) Option {
	return optionFunc(func(c *Client) error {
		c.middleware = append(c.middleware, ctors...)
		return nil
	})
}

// Client is a CRUD client for a single remote collection.  A Client is safe
// for concurrent use.
type Client struct {
	http       HTTPClient
	logger     *zap.Logger
	middleware []postalhttp.RoundTripperConstructor

	base       url.URL
	suffix     string
	dateFields []string
}

// New creates a Client from the given configuration.  Option errors are
// aggregated, and all options are applied even when some fail.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || len(base.Scheme) == 0 || len(base.Host) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	collection := strings.Trim(cfg.Collection, "/")
	if len(collection) == 0 {
		collection = DefaultCollection
	}

	base.Path = strings.TrimRight(base.Path, "/") + "/" + collection
	base.RawPath = ""
	base.RawQuery = ""
	base.Fragment = ""

	c := &Client{
		logger:     zap.NewNop(),
		base:       *base,
		suffix:     cfg.Suffix,
		dateFields: cfg.DateFields,
	}

	if len(c.dateFields) == 0 {
		c.dateFields = DefaultDateFields
	}

	var optErr error
	for _, o := range opts {
		optErr = multierr.Append(optErr, o.apply(c))
	}

	if optErr != nil {
		return nil, optErr
	}

	if c.http == nil {
		ctors := make([]postalhttp.RoundTripperConstructor, 0, len(c.middleware)+2)
		ctors = append(ctors, postalhttp.RequestID())
		ctors = append(ctors, c.middleware...)
		ctors = append(ctors, postalhttp.Logging(c.logger))

		hc, err := cfg.HTTP.NewClient(postalhttp.ClientMiddleware(ctors...))
		if err != nil {
			return nil, err
		}

		c.http = hc
	}

	return c, nil
}

// target produces the URL for the given path elements beneath the collection.
func (c *Client) target(query url.Values, elems ...string) string {
	u := c.base
	for _, e := range elems {
		u.Path += "/" + e
	}

	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

func (c *Client) member(id string) string {
	return c.target(nil, id+c.suffix)
}

// do executes a single request.  A non-nil body is sent as JSON, and a
// non-nil result receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, target string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}

		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.http.Do(request)
	if err != nil {
		return newNetworkError(request, err)
	}

	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return newResponseError(request, response)
	}

	if result == nil {
		io.Copy(io.Discard, response.Body) //nolint:errcheck
		return nil
	}

	decoder := json.NewDecoder(response.Body)
	decoder.UseNumber()
	if err := decoder.Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unable to decode response from %s %s: %w", method, target, err)
	}

	return nil
}

func (c *Client) normalize(r Record) Record {
	if r == nil {
		return r
	}

	return NormalizeDates(r, c.dateFields...)
}

func (c *Client) list(ctx context.Context, target string) ([]Record, error) {
	records := []Record{}
	if err := c.do(ctx, http.MethodGet, target, nil, &records); err != nil {
		return nil, err
	}

	if records == nil {
		// a JSON null body
		records = []Record{}
	}

	for _, r := range records {
		c.normalize(r)
	}

	return records, nil
}

func (c *Client) send(ctx context.Context, method, target string, body Record) (Record, error) {
	var payload any
	if body != nil {
		payload = body
	}

	var r Record
	if err := c.do(ctx, method, target, payload, &r); err != nil {
		return nil, err
	}

	return c.normalize(r), nil
}

// List fetches the whole collection.  The query, if not empty, is appended
// as a query string.  An empty collection yields an empty, non-nil slice.
func (c *Client) List(ctx context.Context, query url.Values) ([]Record, error) {
	return c.list(ctx, c.target(query))
}

// Get fetches a single record by identifier.  If the remote collection has
// no such record, the returned error satisfies errors.Is(err, ErrNotFound).
func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	return c.send(ctx, http.MethodGet, c.member(id), nil)
}

// Save creates a new record or updates an existing one, based on whether
// the record has an identifier.
func (c *Client) Save(ctx context.Context, r Record) (Record, error) {
	if r.IsNew() {
		return c.Create(ctx, r)
	}

	return c.Update(ctx, r)
}

// Create posts a record to the collection.  Any identifier field is
// omitted from the request body.  The record returned is the server's
// representation, with its dates normalized.
func (c *Client) Create(ctx context.Context, r Record) (Record, error) {
	return c.send(ctx, http.MethodPost, c.target(nil), r.withoutID())
}

// Update replaces an existing record.  The record returned is the server's
// representation, with its dates normalized like every other read.
func (c *Client) Update(ctx context.Context, r Record) (Record, error) {
	id, ok := r.ID()
	if !ok {
		return nil, ErrMissingID
	}

	return c.send(ctx, http.MethodPut, c.member(id), r)
}

// Delete removes an existing record.  A new record returns ErrMissingID
// without issuing any request.
func (c *Client) Delete(ctx context.Context, r Record) error {
	id, ok := r.ID()
	if !ok {
		return ErrMissingID
	}

	return c.do(ctx, http.MethodDelete, c.member(id), nil, nil)
}

// Comments returns a client for the comments nested beneath the given post.
func (c *Client) Comments(postID string) *Comments {
	return &Comments{
		client: c,
		postID: postID,
	}
}

// Stream starts a coalescing stream of lookups by identifier.  The stream
// runs until Close is called or the given context is canceled.
func (c *Client) Stream(ctx context.Context) *Stream {
	return newStream(ctx, c)
}
