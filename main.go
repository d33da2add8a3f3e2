package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jquevedomolina/Pumping-Station/internal/config"
	"github.com/jquevedomolina/Pumping-Station/internal/logx"
	"github.com/jquevedomolina/Pumping-Station/internal/orchestrator"
	"github.com/jquevedomolina/Pumping-Station/internal/plot"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
	"github.com/jquevedomolina/Pumping-Station/internal/service"
	"github.com/jquevedomolina/Pumping-Station/internal/web"
)

var wg sync.WaitGroup

func newHandler(cfg config.Config) (http.Handler, *plot.Renderer) {
	page := web.NewPage(nil)
	renderer := plot.NewRenderer(page, cfg.ChartWidth, cfg.ChartHeight)
	client := service.NewClient(cfg.ServiceURL, cfg.RequestTimeout)
	station := orchestrator.NewStation(client, page, present.New(cfg.Locale), renderer)

	limiter := web.NewIPRateLimiter(cfg.RateLimit, cfg.RateBurst)
	router := web.NewRouter(&web.Handler{Station: station, Page: page}, limiter)
	return web.CORS(router), renderer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logx.SetLevel(cfg.LogLevel)

	handler, renderer := newHandler(cfg)
	defer renderer.Close()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			logx.Infof("listening on %s (TLS), service %s", cfg.ListenAddr, cfg.ServiceURL)
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			logx.Infof("listening on %s, service %s", cfg.ListenAddr, cfg.ServiceURL)
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logx.Errorf("server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logx.Infof("shutdown signal received, closing active connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
	wg.Wait()
	logx.Infof("server stopped")
}
