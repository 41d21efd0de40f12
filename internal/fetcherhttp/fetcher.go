// Package fetcherhttp is a reference implementation of the resource
// package's Fetcher bridge contract over net/http. The core never depends
// on this package directly (spec §1 non-goal: "the HTTP fetcher
// implementation"); it exists for integration tests, and cmd/vtsdemo does
// not use it.
package fetcherhttp

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/melowntech/vtscore/internal/resource"
)

// Fetcher dispatches resource.Task fetches over a bounded worker pool,
// grounded on the teacher's internal/tile/generator.go channel+WaitGroup
// worker shape but bounding Start with a semaphore channel and using
// singleflight to collapse duplicate in-flight requests for the same URL
// (errgroup is used only for the FetchAll fan-out).
type Fetcher struct {
	client      *http.Client
	concurrency int

	sem  chan struct{}
	sf   singleflight.Group
	wg   sync.WaitGroup
}

// New creates a Fetcher with the given HTTP timeout and request
// concurrency (spec §6: "the fetcher bridge owns request timeouts; the
// core sets none").
func New(timeout time.Duration, concurrency int) *Fetcher {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
		sem:         make(chan struct{}, concurrency),
	}
}

// Start implements resource.Fetcher.
func (f *Fetcher) Start(task *resource.Task, complete func(*resource.Task)) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		result, _, _ := f.sf.Do(task.QueryUrl, func() (any, error) {
			f.sem <- struct{}{}
			defer func() { <-f.sem }()
			return f.do(task.QueryUrl, task.Headers), nil
		})
		done := result.(*resource.Task)
		// Each caller gets its own *Task so redirect/error fields never
		// alias between distinct dispatches that happened to share a URL.
		out := *task
		out.ContentData = done.ContentData
		out.ContentType = done.ContentType
		out.ReplyCode = done.ReplyCode
		out.ReplyRedirectUrl = done.ReplyRedirectUrl
		complete(&out)
	}()
}

func (f *Fetcher) do(url string, headers map[string]string) *resource.Task {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return &resource.Task{QueryUrl: url, ReplyCode: 0}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// Disable net/http's automatic redirect following: the core's resource
	// state machine owns redirect accounting (spec §4.5, capped at 5).
	client := *f.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Do(req)
	if err != nil {
		return &resource.Task{QueryUrl: url, ReplyCode: 0}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	out := &resource.Task{
		QueryUrl:    url,
		ContentData: body,
		ContentType: resp.Header.Get("Content-Type"),
		ReplyCode:   resp.StatusCode,
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		out.ReplyRedirectUrl = resp.Header.Get("Location")
	}
	return out
}

// Wait blocks until all in-flight fetches complete; used by tests.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

// FetchAll issues a bounded-concurrency batch of fetches and waits for all
// of them, calling each with every result. It uses errgroup purely for its
// bounded SetLimit fan-out; the only error it returns is ctx.Err() when the
// context is cancelled before a fetch is started.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, each func(url string, t *resource.Task)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			done := make(chan struct{})
			var result *resource.Task
			f.Start(&resource.Task{QueryUrl: u}, func(t *resource.Task) {
				result = t
				close(done)
			})
			<-done
			each(u, result)
			return nil
		})
	}
	return g.Wait()
}
