package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kalpovskii/todo-api/docs"
	"github.com/kalpovskii/todo-api/internal/app/handlers"
	"github.com/kalpovskii/todo-api/internal/log"
)

const (
	APIPrefix = "/api/todos"
	DocsPath  = "/api-docs"

	shutdownTimeout = 10 * time.Second
)

type Config struct {
	Addr        string
	DocsHost    string
	Development bool
}

// Server owns the gin router and the http.Server around it.
type Server struct {
	cfg    Config
	router *gin.Engine
	http   *http.Server
}

func New(cfg Config, service handlers.TodoService) *Server {
	s := &Server{cfg: cfg}
	s.setupRouter(handlers.NewTodoHandler(service))
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter(todos *handlers.TodoHandler) {
	if !s.cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	if s.cfg.DocsHost != "" {
		docs.SwaggerInfo.Host = s.cfg.DocsHost
	}

	r := gin.New()
	r.Use(recovery())
	r.Use(requestID())
	r.Use(log.GinLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(cors.Default())
	r.Use(jsonBody())

	r.GET("/", welcome)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, handlers.Response{Success: true, Message: "ok"})
	})

	swagger := ginSwagger.WrapHandler(swaggerFiles.Handler)
	r.GET(DocsPath+"/*any", func(c *gin.Context) {
		if p := strings.TrimPrefix(c.Param("any"), "/"); p == "" {
			c.Redirect(http.StatusMovedPermanently, DocsPath+"/index.html")
			return
		}
		swagger(c)
	})

	api := r.Group(APIPrefix, handlers.ErrorHandler())
	handlers.RegisterRoutes(api, todos)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Response{Success: false, Message: "Route not found"})
	})

	s.router = r
}

func welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to TODO API",
		"docs":    DocsPath,
	})
}

// Run binds the listener, then serves until ctx is cancelled and drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}

	base := "http://" + displayHost(ln.Addr())
	log.Info().Str("addr", ln.Addr().String()).Msgf("Server running on %s", base)
	log.Info().Msgf("API Docs: %s%s", base, DocsPath)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func displayHost(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return addr.String()
	}
	if tcp.IP == nil || tcp.IP.IsUnspecified() {
		return fmt.Sprintf("localhost:%d", tcp.Port)
	}
	return tcp.String()
}
