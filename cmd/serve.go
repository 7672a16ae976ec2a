package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PostGenius/config"
	"PostGenius/handlers"
	"PostGenius/middleware"
	"PostGenius/utils"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the publishing scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.scheduler.Start(); err != nil {
		return err
	}
	defer a.scheduler.Stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	h := handlers.NewHandler(a.postSvc, a.scheduler, a.content, a.settings)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRoutes(h, cfg, limiter),
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Infof("Server starting on port %s...", cfg.Port)
		printEndpoints()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	utils.Infof("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func setupRoutes(h *handlers.Handler, cfg *config.Config, limiter *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.Use(limiter.Limit())
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	r.Use(apiAuth(middleware.AuthMiddleware(cfg.JWTSecret)))
	h.Routes(r)
	return middleware.CORS(cfg.CORSAllowedOrigins)(r)
}

// apiAuth leaves /health public.
func apiAuth(auth mux.MiddlewareFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		protected := auth(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func printEndpoints() {
	utils.Infof("Endpoints available:")
	utils.Infof("  GET    /health                       - Health check")
	utils.Infof("  GET    /api/posts                    - List scheduled posts")
	utils.Infof("  POST   /api/posts                    - Schedule a post")
	utils.Infof("  GET    /api/posts/{id}               - Get a post")
	utils.Infof("  PUT    /api/posts/{id}               - Edit a post")
	utils.Infof("  DELETE /api/posts/{id}               - Delete a post")
	utils.Infof("  POST   /api/posts/{id}/toggle-pause  - Pause or resume")
	utils.Infof("  POST   /api/posts/{id}/publish       - Publish now")
	utils.Infof("  GET    /api/posts/{id}/draft         - Load a post for editing")
	utils.Infof("  POST   /api/publish                  - Publish a draft immediately")
	utils.Infof("  POST   /api/generate/text            - Generate post text")
	utils.Infof("  POST   /api/generate/image           - Generate post image")
	utils.Infof("  GET    /api/settings                 - Read settings")
	utils.Infof("  PUT    /api/settings                 - Save settings")
	utils.Infof("  POST   /api/scheduler/tick           - Run one scheduler pass")
}
