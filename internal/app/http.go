package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/dig"

	"github.com/adanyl0v/go-todo-server/internal/config"
	"github.com/adanyl0v/go-todo-server/internal/delivery/http/v1"
)

// NewApplication builds the engine and its middleware chain.
func NewApplication(env string, logger zerolog.Logger) *gin.Engine {
	if env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(v1.RequestLogger(logger))
	engine.Use(gin.Recovery())
	return engine
}

// RouterOptions configures path matching. Params of a parent group are
// always visible to nested routes, gin groups cannot turn that off.
type RouterOptions struct {
	// CaseSensitive makes /Todos and /todos distinct paths. Otherwise
	// requests are redirected to the matching route.
	CaseSensitive bool
	// Strict makes /todos and /todos/ distinct paths.
	Strict bool
}

type Router struct {
	opts RouterOptions
}

func NewRouter(opts RouterOptions) *Router {
	return &Router{opts: opts}
}

func (r *Router) Options() RouterOptions {
	return r.opts
}

func (r *Router) apply(engine *gin.Engine) {
	// Trailing slashes are handled by wrap, never by redirects.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = !r.opts.CaseSensitive
}

func (r *Router) wrap(next http.Handler) http.Handler {
	if r.opts.Strict {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if len(path) > 1 && strings.HasSuffix(path, "/") {
			path = strings.TrimRight(path, "/")
			if path == "" {
				path = "/"
			}

			u := *req.URL
			u.Path = path
			u.RawPath = ""
			r2 := new(http.Request)
			*r2 = *req
			r2.URL = &u
			req = r2
		}
		next.ServeHTTP(w, req)
	})
}

type ServerOptions struct {
	RootPath string
}

// Server binds the container, the router and the engine together.
type Server struct {
	container   *dig.Container
	router      *Router
	opts        ServerOptions
	engine      *gin.Engine
	errorConfig func(engine *gin.Engine)
}

func NewServer(
	container *dig.Container,
	router *Router,
	opts ServerOptions,
	engine *gin.Engine,
) *Server {
	if opts.RootPath == "" {
		opts.RootPath = "/"
	}
	return &Server{
		container: container,
		router:    router,
		opts:      opts,
		engine:    engine,
	}
}

// SetErrorConfig sets a function run after every route is registered,
// used to install fallback handlers.
func (s *Server) SetErrorConfig(fn func(engine *gin.Engine)) {
	s.errorConfig = fn
}

// Build resolves the handlers from the container and mounts them under
// the root path.
func (s *Server) Build() (http.Handler, error) {
	s.router.apply(s.engine)
	root := s.engine.Group(s.opts.RootPath)

	err := s.container.Invoke(func(h v1.Handler) {
		h.Register(root)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve handlers: %w", err)
	}

	if s.errorConfig != nil {
		s.errorConfig(s.engine)
	}

	return s.router.wrap(s.engine), nil
}

func installNotFoundHandler(engine *gin.Engine) {
	engine.NoRoute(v1.HandleNotFound)
	engine.NoMethod(v1.HandleNotFound)
}
