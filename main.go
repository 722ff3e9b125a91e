package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, closeLog, err := newLogger(os.Stdout, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("server stopped", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
	closeLog()
}

func run(ctx context.Context, cfg *config, log *zap.Logger) error {
	clock := clockwork.NewRealClock()
	h := newHub(cfg.ChannelCapacity, clock, log)
	beat := newMTicker(clock, cfg.HeartbeatInterval)
	var sessions sync.WaitGroup
	// Stopping the heartbeat closes every remaining session. Wait for them
	// so their last log lines land before the log file is closed.
	defer func() {
		beat.stop()
		sessions.Wait()
	}()

	startMetrics(os.Stderr, cfg.MetricsTick)
	defer finalMetrics()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	server := &http.Server{
		Handler:           newHandler(h, beat, &sessions, cfg.Origin, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("push server running on " + ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.StopTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.EvictIdle > 0 {
		g.Go(func() error {
			h.runEvictor(ctx, evictInterval(cfg.EvictIdle), cfg.EvictIdle)
			return nil
		})
	}
	return g.Wait()
}

func newHandler(h *hub, beat *mTicker, sessions *sync.WaitGroup, origin string, log *zap.Logger) http.Handler {
	handler := mux.NewRouter()
	handler.Use(requestLogger(log))

	handler.Handle("/ws", newWsHandler(h, beat, sessions, origin, log)).Methods("GET")
	handler.Handle("/push", pushHandler{hub: h, log: log}).Methods("POST")
	handler.Handle("/metrics", metricsHandler{}).Methods("GET")
	handler.Handle("/", getHandler{}).Methods("GET")

	return handler
}

// evictInterval checks twice per idle period, but not more than once a second.
func evictInterval(idle time.Duration) time.Duration {
	if d := idle / 2; d > time.Second {
		return d
	}
	return time.Second
}
