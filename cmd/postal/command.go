// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/postal"
	"github.com/xmidt-org/postal/internal/appfx"
	"github.com/xmidt-org/postal/postalhttp"
	"go.uber.org/zap"
)

const envPrefix = "POSTAL"

var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return appfx.Usage(
		fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...)),
	)
}

// classify maps client errors onto process exit codes.
func classify(err error) (int, bool) {
	var te *postal.TransportError
	switch {
	case postal.IsNotFound(err):
		return appfx.ExitNotFound, true

	case errors.As(err, &te):
		return appfx.ExitTransport, true

	default:
		return 0, false
	}
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("postal", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("url", "http://localhost:3000", "the base URL of the remote API")
	fs.String("collection", postal.DefaultCollection, "the collection beneath the base URL")
	fs.String("suffix", postal.DefaultSuffix, "the suffix of member paths")
	fs.Duration("timeout", 30*time.Second, "the timeout for each request")
	fs.String("title", "", "the title of a post to create or update")
	fs.String("content", "", "the content of a post or comment to create or update")
	fs.StringToString("param", nil, "a query parameter for list, as key=value (repeatable)")
	fs.Bool("debug", false, "log each request to stderr")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: postal [flags] list|get <id>|create|update <id>|delete <id>|comments <id>|watch")
		fs.PrintDefaults()
	}

	return fs
}

// command holds everything a subcommand needs.
type command struct {
	fs     *pflag.FlagSet
	v      *viper.Viper
	client *postal.Client
	stdin  io.Reader
	stdout io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	err := execute(args, stdin, stdout, stderr)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return 0

	case err != nil:
		fmt.Fprintln(stderr, err)
	}

	return appfx.ExitCode(err, classify)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}

		return appfx.Usage(err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	logger := zap.NewNop()
	if v.GetBool("debug") {
		var err error
		if logger, err = appfx.NewLogger(true); err != nil {
			return err
		}

		defer logger.Sync() //nolint:errcheck
	}

	client, err := postal.New(
		postal.Config{
			BaseURL:    v.GetString("url"),
			Collection: v.GetString("collection"),
			Suffix:     v.GetString("suffix"),
			HTTP: postalhttp.ClientConfig{
				Timeout: v.GetDuration("timeout"),
			},
		},
		postal.WithLogger(logger),
	)

	if err != nil {
		return appfx.Usage(err)
	}

	c := &command{
		fs:     fs,
		v:      v,
		client: client,
		stdin:  stdin,
		stdout: stdout,
	}

	return c.dispatch(context.Background(), fs.Args())
}

func (c *command) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("a command is required")
	}

	name, rest := args[0], args[1:]
	switch name {
	case "list":
		return c.list(ctx, rest)
	case "get":
		return c.withID(rest, func(id string) error { return c.get(ctx, id) })
	case "create":
		return c.create(ctx, rest)
	case "update":
		return c.withID(rest, func(id string) error { return c.update(ctx, id) })
	case "delete":
		return c.withID(rest, func(id string) error { return c.delete(ctx, id) })
	case "comments":
		return c.withID(rest, func(id string) error { return c.comments(ctx, id) })
	case "watch":
		return c.watch(ctx, rest)
	default:
		return usageError("unknown command %q", name)
	}
}

func (c *command) withID(args []string, f func(string) error) error {
	if len(args) != 1 || len(strings.TrimSpace(args[0])) == 0 {
		return usageError("exactly one identifier is required")
	}

	return f(strings.TrimSpace(args[0]))
}

func (c *command) print(v any) error {
	e := json.NewEncoder(c.stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func (c *command) params() url.Values {
	p, _ := c.fs.GetStringToString("param")
	if len(p) == 0 {
		return nil
	}

	q := make(url.Values, len(p))
	for k, v := range p {
		q.Set(k, v)
	}

	return q
}

// fields returns the post fields set on the command line.
func (c *command) fields() postal.Record {
	r := postal.Record{}
	for _, name := range []string{"title", "content"} {
		if c.fs.Changed(name) || c.v.IsSet(name) {
			r[name] = c.v.GetString(name)
		}
	}

	return r
}

func (c *command) list(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageError("list takes no arguments")
	}

	records, err := c.client.List(ctx, c.params())
	if err != nil {
		return err
	}

	return c.print(records)
}

func (c *command) get(ctx context.Context, id string) error {
	r, err := c.client.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.print(r)
}

func (c *command) create(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageError("create takes no arguments")
	}

	r, err := c.client.Save(ctx, c.fields())
	if err != nil {
		return err
	}

	return c.print(r)
}

func (c *command) update(ctx context.Context, id string) error {
	r := c.fields()
	r[postal.IDField] = id

	saved, err := c.client.Save(ctx, r)
	if err != nil {
		return err
	}

	return c.print(saved)
}

func (c *command) delete(ctx context.Context, id string) error {
	return c.client.Delete(ctx, postal.Record{postal.IDField: id})
}

// comments lists the comments of a post, or creates one when --content is set.
func (c *command) comments(ctx context.Context, id string) error {
	comments := c.client.Comments(id)
	if content := c.fields()["content"]; content != nil {
		r, err := comments.Create(ctx, postal.Record{"content": content})
		if err != nil {
			return err
		}

		return c.print(r)
	}

	records, err := comments.List(ctx, c.params())
	if err != nil {
		return err
	}

	return c.print(records)
}

// watch submits each identifier read from stdin to a stream, printing every
// result that survives.  It returns once stdin is exhausted and the last
// identifier's result has been printed.
func (c *command) watch(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageError("watch takes no arguments")
	}

	s := c.client.Stream(ctx)
	defer s.Close()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.stdin)
		for scanner.Scan() {
			if id := strings.TrimSpace(scanner.Text()); len(id) > 0 {
				lines <- id
			}
		}

		scanErr <- scanner.Err()
	}()

	var (
		last    string
		pending bool
	)

	for {
		select {
		case id, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return err
				}

				if !pending {
					return nil
				}

				lines = nil
				continue
			}

			if err := s.Submit(id); err != nil {
				return err
			}

			last, pending = id, true

		case r, ok := <-s.Results():
			if !ok {
				return nil
			}

			if r.ID == last {
				pending = false
			}

			if err := c.printResult(r); err != nil {
				return err
			}

			if lines == nil && !pending {
				return nil
			}
		}
	}
}

func (c *command) printResult(r postal.Result) error {
	if r.Err != nil {
		return c.print(map[string]any{"id": r.ID, "error": r.Err.Error()})
	}

	return c.print(r.Record)
}
