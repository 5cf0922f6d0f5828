package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const defaultDocsPath = "/"

// Handler is a route before middleware: it receives the controller the
// middleware supplies and returns the value to render.
type Handler[C any] func(controller C, c *gin.Context) (any, error)

// RouteHandler is a route after middleware has bound it to a controller.
type RouteHandler func(c *gin.Context) error

// Middleware turns a Handler into a RouteHandler.
type Middleware[C any] func(Handler[C]) RouteHandler

// ErrorHandler renders an error returned or raised by a route.
type ErrorHandler func(c *gin.Context, err error)

// Params configures a Router. Middleware is required.
type Params[C any] struct {
	Middleware   Middleware[C]
	ErrorHandler ErrorHandler
	DocsPath     string
}

// RouteInfo is one entry of the docs listing.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Router dispatches on exact method and path.
type Router[C any] struct {
	params Params[C]

	mu     sync.RWMutex
	routes map[string]Handler[C]
}

// New creates a Router. A nil ErrorHandler falls back to DefaultErrorHandler
// and an empty DocsPath to "/".
func New[C any](params Params[C]) *Router[C] {
	if params.ErrorHandler == nil {
		params.ErrorHandler = DefaultErrorHandler
	}
	if params.DocsPath == "" {
		params.DocsPath = defaultDocsPath
	}
	return &Router[C]{
		params: params,
		routes: make(map[string]Handler[C]),
	}
}

// Get registers a GET route.
func (r *Router[C]) Get(path string, handler Handler[C]) {
	r.add(http.MethodGet, path, handler)
}

// Post registers a POST route.
func (r *Router[C]) Post(path string, handler Handler[C]) {
	r.add(http.MethodPost, path, handler)
}

// Put registers a PUT route.
func (r *Router[C]) Put(path string, handler Handler[C]) {
	r.add(http.MethodPut, path, handler)
}

// Delete registers a DELETE route.
func (r *Router[C]) Delete(path string, handler Handler[C]) {
	r.add(http.MethodDelete, path, handler)
}

// add registers handler, replacing any earlier route for the same key.
func (r *Router[C]) add(method, path string, handler Handler[C]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes[routeKey(method, path)] = handler
}

// Routes lists registered routes ordered by path, then method.
func (r *Router[C]) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]RouteInfo, 0, len(r.routes))
	for key := range r.routes {
		method, path, _ := strings.Cut(key, ":")
		infos = append(infos, RouteInfo{Method: method, Path: path})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})
	return infos
}

// Handler registers the docs route and returns the dispatching gin handler.
// Unmatched requests get a 404 envelope.
func (r *Router[C]) Handler() gin.HandlerFunc {
	r.Get(r.params.DocsPath, func(C, *gin.Context) (any, error) {
		return r.Routes(), nil
	})

	return func(c *gin.Context) {
		r.mu.RLock()
		handler, ok := r.routes[routeKey(c.Request.Method, c.Request.URL.Path)]
		r.mu.RUnlock()

		if !ok {
			JSONResponse(c, Response{Status: http.StatusNotFound, Message: "route not found"})
			return
		}

		if err := run(c, r.params.Middleware(handler)); err != nil {
			r.params.ErrorHandler(c, err)
		}
	}
}

// run calls route, turning a panic into an error.
func run(c *gin.Context, route RouteHandler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return route(c)
}

// DefaultErrorHandler answers 400 with the error message.
func DefaultErrorHandler(c *gin.Context, err error) {
	JSONResponse(c, Response{Status: http.StatusBadRequest, Message: err.Error()})
}

// WithController binds every route to the same controller and renders the
// handler result as a 200 envelope.
func WithController[C any](controller C) Middleware[C] {
	return func(handler Handler[C]) RouteHandler {
		return func(c *gin.Context) error {
			data, err := handler(controller, c)
			if err != nil {
				return err
			}
			JSONResponse(c, Response{Status: http.StatusOK, Data: data})
			return nil
		}
	}
}

func routeKey(method, path string) string {
	return method + ":" + path
}
