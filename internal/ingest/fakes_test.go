package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
)

var errBoundary = errors.New("persistence boundary unavailable")

// fakeCreator records every payload and delegates to createFunc when set.
type fakeCreator struct {
	mu         sync.Mutex
	payloads   []domain.PostPayload
	calls      map[string]int
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
	createFunc func(ctx context.Context, payload domain.PostPayload) (string, error)
}

func newFakeCreator() *fakeCreator {
	return &fakeCreator{calls: make(map[string]int)}
}

func (f *fakeCreator) CreatePost(ctx context.Context, payload domain.PostPayload) (string, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxFlight.Load()
		if current <= seen || f.maxFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.calls[payload.Body]++
	f.mu.Unlock()

	if f.createFunc != nil {
		return f.createFunc(ctx, payload)
	}
	return "post-" + payload.Body, nil
}

func (f *fakeCreator) callsFor(body string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[body]
}

func (f *fakeCreator) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeCreator) payloadFor(body string) (domain.PostPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payloads {
		if p.Body == body {
			return p, true
		}
	}
	return domain.PostPayload{}, false
}

// fakeBinder uploads by file name; names listed in failing return an error.
type fakeBinder struct {
	failing map[string]bool
}

func (b fakeBinder) Bind(_ context.Context, file *media.LocalFile) (*domain.MediaRef, error) {
	if file == nil {
		return nil, nil
	}
	if b.failing[file.Name] {
		return nil, fmt.Errorf("upload %s: %w", file.Name, errBoundary)
	}
	return &domain.MediaRef{DurableID: "media/" + file.Name, PreviewPath: file.Path}, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	reports []domain.BatchReport
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, report domain.BatchReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, report)
	return p.err
}

func records(bodies ...string) []domain.RawContentRecord {
	out := make([]domain.RawContentRecord, len(bodies))
	for i, body := range bodies {
		out[i] = domain.RawContentRecord{EnglishContent: body}
	}
	return out
}
