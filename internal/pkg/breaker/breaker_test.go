package breaker

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestExecuteReturnsTypedResult(t *testing.T) {
	cb := New("test", slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)

	got, err := Execute(cb, func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("unexpected result %q err=%v", got, err)
	}

	boom := errors.New("boom")
	got, err = Execute(cb, func() (string, error) { return "ignored", boom })
	if !errors.Is(err, boom) || got != "" {
		t.Fatalf("expected zero value and boom, got %q err=%v", got, err)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cb := New("test", slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		_, _ = Execute(cb, func() (int, error) { return 0, boom })
	}

	called := false
	_, err := Execute(cb, func() (int, error) {
		called = true
		return 1, nil
	})
	if called {
		t.Fatal("expected open breaker to skip the call")
	}
	if !Rejected(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if Rejected(boom) {
		t.Fatal("plain errors are not rejections")
	}
}

func TestBreakerIgnoresErrorsClassifiedAsSuccess(t *testing.T) {
	declined := errors.New("declined")
	cb := New("test", slog.New(slog.NewJSONHandler(io.Discard, nil)), func(err error) bool {
		return err == nil || errors.Is(err, declined)
	})

	for i := 0; i < 5; i++ {
		if _, err := Execute(cb, func() (int, error) { return 0, declined }); !errors.Is(err, declined) {
			t.Fatalf("expected caller to still see the error, got %v", err)
		}
	}

	called := false
	got, err := Execute(cb, func() (int, error) {
		called = true
		return 7, nil
	})
	if !called || err != nil || got != 7 {
		t.Fatalf("expected breaker to stay closed, called=%v got=%d err=%v", called, got, err)
	}
}
