// Package server exposes the collaboration hub over HTTP: a websocket
// endpoint carrying the sync protocol plus a small health surface.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zulandar/atelier/internal/hub"
)

// StartOpts holds configuration for the collaboration server.
type StartOpts struct {
	Hub  *hub.Hub
	Host string
	Port int
	Out  io.Writer

	// IdleTimeout > 0 enables the idle-session sweep; SweepInterval
	// controls how often it runs.
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// upgrader accepts any origin: session identity comes from the join
// command, not the HTTP handshake.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Start launches the collaboration server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Hub == nil {
		return fmt.Errorf("server: hub is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(ctx, opts.Hub)

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.IdleTimeout > 0 {
		interval := opts.SweepInterval
		if interval <= 0 {
			interval = time.Minute
		}
		go sweepIdle(ctx, opts.Hub, opts.IdleTimeout, interval)
	}

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Atelier listening on %s\n", addr)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// newRouter builds the gin router serving the websocket endpoint and the
// health surface.
func newRouter(ctx context.Context, h *hub.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the HTTP error response.
			log.Printf("server: upgrade: %v", err)
			return
		}
		sess := newWSSession(uuid.NewString(), h, conn)
		sess.run(ctx)
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.Stats())
	})

	return router
}

// sweepIdle periodically kicks sessions with no recent activity.
func sweepIdle(ctx context.Context, h *hub.Hub, timeout, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.SweepIdle(timeout); n > 0 {
				log.Printf("server: swept %d idle session(s)", n)
			}
		}
	}
}
