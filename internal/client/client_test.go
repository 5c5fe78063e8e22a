package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func sseServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, prompt string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
			Option string `json:"option"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		handler(w, r, body.Prompt)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFrames(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, f := range frames {
		_, _ = io.WriteString(w, f)
		w.(http.Flusher).Flush()
	}
}

func TestCompleteAccumulatesDeltas(t *testing.T) {
	srv := sseServer(t, func(w http.ResponseWriter, _ *http.Request, _ string) {
		writeFrames(w, "data: {\"text\":\" on\"}\n\n", "data: {\"text\":\" the mat.\"}\n\n")
	})

	var updates []string
	var finished string
	loadingInFlight := true
	var c *Completer
	c = New(srv.URL, srv.Client(), Callbacks{
		OnUpdate: func(completion string) {
			updates = append(updates, completion)
			loadingInFlight = loadingInFlight && c.IsLoading()
		},
		OnFinish: func(prompt, completion string) {
			finished = prompt + "|" + completion
		},
	})

	got, err := c.Complete(context.Background(), "The cat sat", Options{Option: "continue"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != " on the mat." || c.Completion() != " on the mat." {
		t.Fatalf("got %q completion %q", got, c.Completion())
	}
	if len(updates) != 2 || updates[0] != " on" || updates[1] != " on the mat." {
		t.Fatalf("updates=%q", updates)
	}
	if !loadingInFlight {
		t.Fatal("expected IsLoading during updates")
	}
	if c.IsLoading() {
		t.Fatal("expected IsLoading false after finish")
	}
	if finished != "The cat sat| on the mat." {
		t.Fatalf("finish=%q", finished)
	}
	if c.Err() != nil {
		t.Fatalf("Err=%v", c.Err())
	}
}

func TestCompleteRateLimited(t *testing.T) {
	srv := sseServer(t, func(w http.ResponseWriter, _ *http.Request, _ string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"quota exceeded","provider":"gemini","status":429}`)
	})

	var reported error
	c := New(srv.URL, srv.Client(), Callbacks{OnError: func(err error) { reported = err }})

	_, err := c.Complete(context.Background(), "x", Options{Option: "improve"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != RateLimitMessage || apiErr.Provider != "gemini" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if reported == nil || c.Err() == nil || c.IsLoading() {
		t.Fatalf("state not updated: reported=%v err=%v loading=%v", reported, c.Err(), c.IsLoading())
	}
}

func TestCompleteKeepsPartialTextOnErrorFrame(t *testing.T) {
	srv := sseServer(t, func(w http.ResponseWriter, _ *http.Request, _ string) {
		writeFrames(w,
			"data: {\"text\":\"half\"}\n\n",
			"event: error\ndata: {\"error\":\"connection reset\",\"kind\":\"network_error\",\"provider\":\"openai\"}\n\n",
		)
	})

	c := New(srv.URL, srv.Client(), Callbacks{})
	got, err := c.Complete(context.Background(), "x", Options{Option: "continue"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != "network_error" {
		t.Fatalf("expected network error frame, got %v", err)
	}
	if got != "half" || c.Completion() != "half" {
		t.Fatalf("got %q completion %q", got, c.Completion())
	}
	if errors.Is(err, ErrRateLimited) {
		t.Fatal("error frame without 429 matched ErrRateLimited")
	}
}

func TestNewerRequestSupersedesInFlight(t *testing.T) {
	release := make(chan struct{})
	firstApplied := make(chan struct{})
	lateWritten := make(chan bool, 1)
	var once sync.Once

	srv := sseServer(t, func(w http.ResponseWriter, r *http.Request, prompt string) {
		if prompt != "slow" {
			writeFrames(w, "data: {\"text\":\"fast\"}\n\n")
			return
		}
		writeFrames(w, "data: {\"text\":\"slow\"}\n\n")
		select {
		case <-release:
			writeFrames(w, "data: {\"text\":\" late\"}\n\n")
			lateWritten <- true
		case <-r.Context().Done():
			lateWritten <- false
		}
	})

	var mu sync.Mutex
	var updates []string
	c := New(srv.URL, srv.Client(), Callbacks{OnUpdate: func(s string) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, s)
		if s == "slow" {
			once.Do(func() { close(firstApplied) })
		}
	}})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Complete(context.Background(), "slow", Options{Option: "continue"})
		errCh <- err
	}()
	<-firstApplied

	got, err := c.Complete(context.Background(), "fast", Options{Option: "continue"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	close(release)

	// The older request is not cancelled; its late output is discarded here.
	if !<-lateWritten {
		t.Fatal("older request was cancelled upstream")
	}
	if err := <-errCh; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if got != "fast" || c.Completion() != "fast" {
		t.Fatalf("got %q completion %q", got, c.Completion())
	}
	mu.Lock()
	defer mu.Unlock()
	for _, u := range updates {
		if strings.Contains(u, "late") {
			t.Fatalf("late delta leaked: %q", updates)
		}
	}
}
