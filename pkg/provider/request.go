package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed download is kept for diagnostics.
const maxErrorBody = 64 * 1024

// Request describes one HTTP call made on behalf of a service.
type Request struct {
	Method string
	URL    string
	Params url.Values
	// Body is sent as JSON when set.
	Body any
	// Destination, when set, receives the response body on a 200.
	Destination string
}

// Response carries the status and, unless the body went to a file, the content.
type Response struct {
	Status  int
	Content []byte
}

// OK reports a 200 status.
func (r *Response) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// Requester performs authenticated HTTP calls. Transport failures are errors;
// HTTP error statuses are not.
type Requester interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// RestRequester is a Requester backed by resty.
type RestRequester struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewRestRequester wraps httpClient (which typically carries OAuth credentials)
// with a User-Agent and a client-side rate limit. rps <= 0 disables limiting.
func NewRestRequester(httpClient *http.Client, userAgent string, rps float64) *RestRequester {
	hc := &http.Client{}
	if httpClient != nil {
		c := *httpClient
		hc = &c
	}
	hc.Transport = &UserAgentTransport{RoundTripper: hc.Transport, UserAgent: userAgent}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RestRequester{
		client:  resty.NewWithClient(hc),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Do implements Requester.
func (r *RestRequester) Do(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	rr := r.client.R().SetContext(ctx)
	if req.Params != nil {
		rr.SetQueryParamsFromValues(req.Params)
	}
	if req.Body != nil {
		rr.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	if req.Destination != "" {
		rr.SetDoNotParseResponse(true)
	}

	resp, err := rr.Execute(method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL, err)
	}

	if req.Destination == "" {
		return &Response{Status: resp.StatusCode(), Content: resp.Body()}, nil
	}

	body := resp.RawBody()
	defer body.Close()

	out := &Response{Status: resp.StatusCode()}
	if resp.StatusCode() != http.StatusOK {
		out.Content, _ = io.ReadAll(io.LimitReader(body, maxErrorBody))
		return out, nil
	}
	if err := downloadTo(req.Destination, body); err != nil {
		return nil, fmt.Errorf("saving %s: %w", req.Destination, err)
	}
	return out, nil
}

func downloadTo(dest string, body io.Reader) error {
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
