package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

type options struct {
	logger  log.FieldLogger
	baseURL string
}

type Option func(*options)

// WithLogger sets where request traces go. They are logged at debug level, so
// they only show with --verbose. Defaults to the standard logrus logger.
func WithLogger(l log.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		o.baseURL = raw
	}
}

// loggingRoundTripper emits one debug entry per request and one per response
// (including latency).
type loggingRoundTripper struct {
	base http.RoundTripper
	log  log.FieldLogger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	entry := t.log.WithFields(log.Fields{"method": req.Method, "url": req.URL.String()})
	entry.Debug("github api request")

	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		entry.WithError(err).Debugf("github api error after %s", dur)
		return resp, err
	}
	entry.WithField("status", resp.StatusCode).Debugf("github api %s (%s)", http.StatusText(resp.StatusCode), dur)
	return resp, nil
}

func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.logger == nil {
		o.logger = log.StandardLogger()
	}

	var transport http.RoundTripper = &loggingRoundTripper{base: http.DefaultTransport, log: o.logger}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	tc := &http.Client{Transport: transport}

	client := github.NewClient(tc)
	if o.baseURL != "" {
		raw := o.baseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("github client: base url %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
		client.UploadURL = u
	}

	return &Client{Client: client, HTTP: tc}, nil
}

// Repository fetches the metadata of owner/name. GitHub follows renames, so
// the returned full name may differ from the one asked for.
func (c *Client) Repository(ctx context.Context, owner, name string) (*github.Repository, *github.Response, error) {
	return c.Client.Repositories.Get(ctx, owner, name)
}
