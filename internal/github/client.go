// Package github provides GitHub API integration.
package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/HartBrook/folio/internal/errors"
	"github.com/cenkalti/backoff/v4"
	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"
	// Host is passed to go-gh for the GraphQL endpoint.
	Host = "github.com"

	apiVersion = "2022-11-28"
	perPage    = "100"
	maxPages   = 10
)

// Client issues REST and GraphQL calls to GitHub.
// Every method returns either a value or a *errors.FolioError carrying one of
// RATE_LIMITED, NOT_FOUND, NETWORK_ERROR, AUTH_REQUIRED or MALFORMED_RESPONSE.
type Client struct {
	rest     *resty.Client
	graphql  *api.GraphQLClient // nil without a token
	hasToken bool
	retries  int
	backoff  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

type clientOptions struct {
	token     string
	baseURL   string
	userAgent string
	transport http.RoundTripper
	timeout   time.Duration
	retries   int
	backoff   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// WithToken sets the credential. An empty token means unauthenticated calls
// and no contribution calendar.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.token = token }
}

// WithBaseURL overrides DefaultBaseURL for REST calls.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = u }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.userAgent = ua }
}

// WithTransport sets the HTTP transport shared by REST and GraphQL calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithRetry sets how many times a NETWORK_ERROR is retried and the initial backoff.
func WithRetry(retries int, initial time.Duration) Option {
	return func(o *clientOptions) {
		o.retries = retries
		o.backoff = initial
	}
}

// WithClock sets the time source used for the calendar window.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *clientOptions) { o.log = log }
}

// NewClient creates a GitHub client.
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{
		baseURL:   DefaultBaseURL,
		userAgent: "folio",
		transport: http.DefaultTransport,
		timeout:   30 * time.Second,
		retries:   2,
		backoff:   500 * time.Millisecond,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	rest := resty.New().
		SetBaseURL(o.baseURL).
		SetTransport(o.transport).
		SetTimeout(o.timeout).
		SetLogger(restyLogger{o.log}).
		SetDisableWarn(true).
		SetHeaders(map[string]string{
			"Accept":               "application/vnd.github+json",
			"User-Agent":           o.userAgent,
			"X-GitHub-Api-Version": apiVersion,
		})
	if o.token != "" {
		rest.SetAuthToken(o.token)
	}

	c := &Client{
		rest:     rest,
		hasToken: o.token != "",
		retries:  o.retries,
		backoff:  o.backoff,
		now:      o.now,
		log:      o.log,
	}

	// go-gh resolves missing options from the gh config and fails without a
	// token, so the GraphQL client only exists when a credential does.
	if o.token != "" {
		gql, err := api.NewGraphQLClient(api.ClientOptions{
			Host:         Host,
			AuthToken:    o.token,
			Transport:    o.transport,
			Timeout:      o.timeout,
			LogIgnoreEnv: true,
			Headers: map[string]string{
				"User-Agent":           o.userAgent,
				"X-GitHub-Api-Version": apiVersion,
			},
		})
		if err != nil {
			return nil, err
		}
		c.graphql = gql
	}

	return c, nil
}

// HasCredential reports whether a token is configured.
func (c *Client) HasCredential() bool {
	return c.hasToken
}

// get issues a GET and returns the successful response. NETWORK_ERROR
// failures are retried with exponential backoff; everything else is final.
func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string) (*resty.Response, error) {
	var resp *resty.Response

	op := func() error {
		r, err := c.rest.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(errors.NetworkError(endpoint, ctx.Err()))
			}
			return errors.NetworkError(endpoint, err)
		}
		if err := classify(endpoint, r.StatusCode(), r.Header()); err != nil {
			if errors.Is(err, errors.ErrNetwork) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}

	err := c.retry(ctx, endpoint, op)
	return resp, err
}

func (c *Client) retry(ctx context.Context, endpoint string, op backoff.Operation) error {
	exp := backoff.NewExponentialBackOff(backoff.WithInitialInterval(c.backoff))
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(max(c.retries, 0))), ctx)

	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		c.log.Debug().Err(err).Str("endpoint", endpoint).Dur("wait", wait).Msg("retrying GitHub request")
	})
	if err != nil && errors.CodeOf(err) == "" {
		// context cancelled while waiting between attempts
		err = errors.NetworkError(endpoint, err)
	}

	recordRequest(endpoint, err)
	return err
}

// classify maps a non-2xx status onto the failure taxonomy.
func classify(endpoint string, status int, header http.Header) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && header.Get("X-RateLimit-Remaining") == "0":
		return errors.RateLimited(endpoint, rateLimitReset(header))
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return errors.AuthRequired(endpoint)
	case status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		return errors.NotFound(endpoint)
	default:
		return errors.NetworkError(endpoint, fmt.Errorf("unexpected status %d", status))
	}
}

func rateLimitReset(header http.Header) time.Time {
	secs, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

var nextLinkRE = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPage extracts the rel="next" URL from a Link header.
func nextPage(header http.Header) string {
	m := nextLinkRE.FindStringSubmatch(header.Get("Link"))
	if m == nil {
		return ""
	}
	return m[1]
}

// restyLogger routes resty's internal logging through zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Debug().Msgf("resty: "+format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Debug().Msgf("resty: "+format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Trace().Msgf("resty: "+format, v...)
}
