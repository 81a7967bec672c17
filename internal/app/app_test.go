package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderpay/internal/config"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/notify"
	testhelpers "github.com/polkiloo/orderpay/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewHubUsesConfig(t *testing.T) {
	hub := newHub(hubParams{
		Config: &config.Config{NotifyWorkers: 2, NotifyBuffer: 1},
		Logger: discardLogger(),
	})
	if hub == nil {
		t.Fatal("expected hub instance")
	}

	if err := hub.Emit(context.Background(), model.OrderUpdate{UserID: "u"}); err != nil {
		t.Fatalf("first emit should fit into the queue: %v", err)
	}
	if err := hub.Emit(context.Background(), model.OrderUpdate{UserID: "u"}); err != notify.ErrQueueFull {
		t.Fatalf("expected queue of one to be full, got %v", err)
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	hub := notify.NewHub(1, 4, discardLogger())
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     server,
		Hub:        hub,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}
	if server.BaseContext == nil {
		t.Fatal("expected request base context to be installed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	// Dispatchers must survive the end of the start context.
	cancel()

	updates, unsubscribe := hub.Subscribe("u1")
	defer unsubscribe()
	if err := hub.Emit(context.Background(), model.OrderUpdate{UserID: "u1", OrderID: "o1"}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected hub to dispatch after startup")
	}

	requestCtx := server.BaseContext(nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = recorder.Stop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
	if requestCtx.Err() == nil {
		t.Fatal("expected request context to be cancelled on stop")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()
	server := &http.Server{Addr: listener.Addr().String()}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     server,
		Hub:        notify.NewHub(1, 1, discardLogger()),
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = recorder.Stop(context.Background())
}
