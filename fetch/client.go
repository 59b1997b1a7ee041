package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gowirek/deferred/deferred"
)

// Response is the decoded outcome of a successful request: the status
// code and the fully-drained body. fetch always drains the underlying
// http.Response.Body before resolving and closes it when the request's
// producer returns, so callers never see a live connection through a
// Deferred.
type Response struct {
	StatusCode int
	Body       []byte
}

// StatusError reports a non-2xx HTTP response; fetch treats it as a
// failure the same way a transport error is a failure, so callers can
// Recover from either uniformly.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("fetch: %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client issues requests through an http.Client and an Executor,
// resolving each one as a *deferred.Deferred[*Response].
type Client struct {
	http *http.Client
	exec deferred.Executor
}

// New returns a Client. httpClient may be nil, in which case
// http.DefaultClient is used.
func New(httpClient *http.Client, exec deferred.Executor) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, exec: exec}
}

// Get issues an HTTP GET against url and resolves with the Response once
// the body has been fully read and the status is 2xx, or with a failure if
// the request could not be built, the round trip failed, the body could
// not be read, or the status was not 2xx (a StatusError).
// The request is submitted to the Client's Executor, so Get never blocks
// the calling goroutine.
func (c *Client) Get(ctx context.Context, url string) *deferred.Deferred[*Response] {
	return deferred.NewWithProducer[*Response](c.exec, func(r deferred.Resolver[*Response]) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			r.ResolveError(fmt.Errorf("fetch: building request: %w", err))
			return
		}

		resp, err := c.http.Do(req)
		if err != nil {
			r.ResolveError(fmt.Errorf("fetch: round trip: %w", err))
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			r.ResolveError(fmt.Errorf("fetch: reading body: %w", err))
			return
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			r.ResolveError(StatusError{StatusCode: resp.StatusCode, URL: url})
			return
		}

		r.ResolveValue(&Response{StatusCode: resp.StatusCode, Body: body})
	})
}
