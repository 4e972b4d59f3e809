// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// MetricsPath is where prometheus metrics are exposed when a Gatherer is set.
	MetricsPath = "/metrics"

	// maxBody caps the size of request bodies.
	maxBody = 1024 * 1024
)

// Handler serves posts and comments from a Store.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a Handler.  A nil logger disables logging.
func NewHandler(s Store, l *zap.Logger) *Handler {
	if l == nil {
		l = zap.NewNop()
	}

	return &Handler{
		store:  s,
		logger: l,
	}
}

// Register adds this handler's routes to the given router.  Member routes
// accept an optional .json suffix.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts", h.createPost).Methods(http.MethodPost)

	for _, path := range []string{"/posts/{id:[0-9]+}", "/posts/{id:[0-9]+}.json"} {
		r.HandleFunc(path, h.getPost).Methods(http.MethodGet)
		r.HandleFunc(path, h.updatePost).Methods(http.MethodPut, http.MethodPatch)
		r.HandleFunc(path, h.deletePost).Methods(http.MethodDelete)
	}

	r.HandleFunc("/posts/{id:[0-9]+}/comments", h.listComments).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}/comments", h.createComment).Methods(http.MethodPost)
}

// RouterOptions tailors the http.Handler returned by NewRouter.
type RouterOptions struct {
	// Logger is used for request logging and panics.  Nil disables logging.
	Logger *zap.Logger

	// Registerer, if set, receives the server's request metrics.
	Registerer prometheus.Registerer

	// Gatherer, if set, is exposed at MetricsPath.
	Gatherer prometheus.Gatherer

	// Namespace is the prometheus namespace for request metrics.
	Namespace string

	// Profiling exposes the pprof handlers beneath ProfilingPrefix.
	Profiling bool

	// ProfilingPrefix is the path prefix for the pprof handlers.
	// DefaultProfilingPrefix is used if unset.
	ProfilingPrefix string
}

// NewRouter builds the complete backend: routes for the given store
// decorated with logging and panic recovery.  Metrics and profiling are optional.
func NewRouter(s Store, o RouterOptions) (http.Handler, error) {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	chain := alice.New(Logging(o.Logger), Recover(o.Logger))
	if o.Registerer != nil {
		m, err := Metrics(o.Registerer, o.Namespace)
		if err != nil {
			return nil, err
		}

		chain = chain.Append(m)
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(response http.ResponseWriter, _ *http.Request) {
		writeError(response, http.StatusNotFound)
	})

	router.MethodNotAllowedHandler = http.HandlerFunc(func(response http.ResponseWriter, _ *http.Request) {
		writeError(response, http.StatusMethodNotAllowed)
	})

	NewHandler(s, o.Logger).Register(router)
	if o.Gatherer != nil {
		router.Handle(MetricsPath, promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	}

	if o.Profiling {
		ConfigureProfiling(router, o.ProfilingPrefix)
	}

	return chain.Then(router), nil
}

func writeJSON(response http.ResponseWriter, status int, v any) {
	response.Header().Set("Content-Type", "application/json; charset=utf-8")
	response.WriteHeader(status)
	json.NewEncoder(response).Encode(v) //nolint:errcheck
}

func writeError(response http.ResponseWriter, status int) {
	writeJSON(response, status, map[string]string{"error": http.StatusText(status)})
}

// fail translates an error into a response.
func (h *Handler) fail(response http.ResponseWriter, request *http.Request, err error) {
	var fe FieldErrors
	switch {
	case errors.As(err, &fe):
		writeJSON(response, http.StatusUnprocessableEntity, fe)

	case errors.Is(err, ErrNotFound):
		writeError(response, http.StatusNotFound)

	case errors.Is(err, errBadRequest):
		writeError(response, http.StatusBadRequest)

	default:
		h.logger.Error("request failed", zap.String("path", request.URL.Path), zap.Error(err))
		writeError(response, http.StatusInternalServerError)
	}
}

var errBadRequest = errors.New("bad request")

func pathID(request *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(request)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errBadRequest, err)
	}

	return id, nil
}

// decodeBody reads a JSON object from the request, optionally wrapped in
// an object with the given root member.
func decodeBody(request *http.Request, root string, v any) error {
	body, err := io.ReadAll(io.LimitReader(request.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err)
	}

	if err := json.Unmarshal(unwrap(body, root), v); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err)
	}

	return nil
}

func (h *Handler) listPosts(response http.ResponseWriter, request *http.Request) {
	posts, err := h.store.ListPosts(request.Context())
	if err != nil {
		h.fail(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, posts)
}

func (h *Handler) getPost(response http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	p, err := h.store.GetPost(request.Context(), id)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, p)
}

func (h *Handler) createPost(response http.ResponseWriter, request *http.Request) {
	var pp postParams
	if err := decodeBody(request, "post", &pp); err != nil {
		h.fail(response, request, err)
		return
	}

	var p Post
	pp.applyTo(&p)
	if err := p.Validate(); err != nil {
		h.fail(response, request, err)
		return
	}

	p, err := h.store.CreatePost(request.Context(), p)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	response.Header().Set("Location", fmt.Sprintf("/posts/%d", p.ID))
	writeJSON(response, http.StatusCreated, p)
}

func (h *Handler) updatePost(response http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	var pp postParams
	if err := decodeBody(request, "post", &pp); err != nil {
		h.fail(response, request, err)
		return
	}

	p, err := h.store.GetPost(request.Context(), id)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	pp.applyTo(&p)
	if err := p.Validate(); err != nil {
		h.fail(response, request, err)
		return
	}

	p, err = h.store.UpdatePost(request.Context(), p)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, p)
}

func (h *Handler) deletePost(response http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err == nil {
		err = h.store.DeletePost(request.Context(), id)
	}

	if err != nil {
		h.fail(response, request, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listComments(response http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	comments, err := h.store.ListComments(request.Context(), id)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, comments)
}

func (h *Handler) createComment(response http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	var cp commentParams
	if err := decodeBody(request, "comment", &cp); err != nil {
		h.fail(response, request, err)
		return
	}

	c := Comment{PostID: id}
	if cp.Content != nil {
		c.Content = *cp.Content
	}

	if err := c.Validate(); err != nil {
		h.fail(response, request, err)
		return
	}

	c, err = h.store.CreateComment(request.Context(), c)
	if err != nil {
		h.fail(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, c)
}
