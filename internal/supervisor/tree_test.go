// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingService runs until cancelled and counts starts. When failFirst is
// set, the first run returns an error so the supervisor restarts it.
type countingService struct {
	name      string
	starts    atomic.Int32
	failFirst bool
}

func (s *countingService) Serve(ctx context.Context) error {
	if s.starts.Add(1) == 1 && s.failFirst {
		return errors.New("transient failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func TestNewTree_Defaults(t *testing.T) {
	tree := NewTree(quietLogger(), TreeConfig{})
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults", tree.config)
	}

	tree = NewTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
	if tree.config.FailureBackoff != time.Second || tree.config.FailureThreshold != 5 {
		t.Errorf("config = %+v", tree.config)
	}
}

func TestTree_RunsAndStops(t *testing.T) {
	tree := NewTree(quietLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	data := &countingService{name: "data"}
	api := &countingService{name: "api"}
	tree.AddDataService(data)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
	if data.starts.Load() != 1 || api.starts.Load() != 1 {
		t.Errorf("starts = %d/%d, want 1/1", data.starts.Load(), api.starts.Load())
	}
	report, err := tree.UnstoppedServiceReport()
	if err != nil || len(report) != 0 {
		t.Errorf("unstopped = %v, %v", report, err)
	}
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := NewTree(quietLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	flaky := &countingService{name: "flaky", failFirst: true}
	steady := &countingService{name: "steady"}
	tree.AddDataService(flaky)
	tree.AddAPIService(steady)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_ = tree.Serve(ctx)

	if flaky.starts.Load() < 2 {
		t.Errorf("flaky starts = %d, want a restart", flaky.starts.Load())
	}
	if steady.starts.Load() != 1 {
		t.Errorf("api layer restarted %d times", steady.starts.Load()-1)
	}
}

// cancellingService cancels the tree context on its first run, the way the
// dataset service reacts to a failed load.
type cancellingService struct {
	cancel context.CancelFunc
}

func (s *cancellingService) Serve(ctx context.Context) error {
	s.cancel()
	<-ctx.Done()
	return ctx.Err()
}

func (s *cancellingService) String() string { return "cancelling" }

func TestTree_Run(t *testing.T) {
	tests := []struct {
		name  string
		start func(tree *Tree, cancel context.CancelFunc)
	}{
		{
			name: "external cancel",
			start: func(tree *Tree, cancel context.CancelFunc) {
				tree.AddAPIService(&countingService{name: "api"})
				time.AfterFunc(50*time.Millisecond, cancel)
			},
		},
		{
			name: "cancelled by a service",
			start: func(tree *Tree, cancel context.CancelFunc) {
				tree.AddDataService(&cancellingService{cancel: cancel})
				tree.AddAPIService(&countingService{name: "api"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree(quietLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			tt.start(tree, cancel)

			done := make(chan error, 1)
			go func() { done <- tree.Run(ctx) }()

			select {
			case err := <-done:
				if err != nil {
					t.Errorf("Run() = %v, want nil after cancellation", err)
				}
			case <-time.After(3 * time.Second):
				t.Fatal("Run did not return after the context was cancelled")
			}
		})
	}
}
