// Package entitystore resolves route, carrier and vehicle references against the
// external REST data store.
package entitystore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shiptrack/internal/pkg/errs"
	"shiptrack/internal/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout    = 2 * time.Second
	DefaultMaxRetries = 2

	maxBodyBytes = 4 << 20
)

type Option func(*Client)

// WithTimeout bounds every single request attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRetries sets how many times a failed lookup is retried.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithToken sends token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client implements ports.EntityStore over HTTP. Every lookup lists the
// collection and matches the name exactly; transient failures (network errors,
// 5xx, 429) are retried with exponential backoff.
type Client struct {
	http       *http.Client
	baseURL    *url.URL
	timeout    time.Duration
	maxRetries uint64
	token      string
	log        *logger.Logger
}

func New(baseURL string, log *logger.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("entityStoreURL", fmt.Errorf("%q is not an absolute URL", baseURL))
	}

	c := &Client{
		http:       http.DefaultClient,
		baseURL:    u,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		log:        log.Named("entity-store"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ResolveRoute(ctx context.Context, name string) error {
	return c.resolve(ctx, "route", "/api/routes", name, func(l listing) []string {
		return names(l.Routes, func(r namedEntity) string { return r.Name })
	})
}

func (c *Client) ResolveCarrier(ctx context.Context, name string) error {
	return c.resolve(ctx, "carrier", "/api/carriers", name, func(l listing) []string {
		return names(l.Carriers, func(r namedEntity) string { return r.Name })
	})
}

func (c *Client) ResolveVehicle(ctx context.Context, plate string) error {
	return c.resolve(ctx, "vehicle", "/api/vehicles", plate, func(l listing) []string {
		return names(l.Vehicles, func(v vehicle) string { return v.PlateNumber })
	})
}

func (c *Client) resolve(ctx context.Context, kind, path, name string, extract func(listing) []string) error {
	var body listing
	operation := func() error {
		var err error
		body, err = c.fetch(ctx, path)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.log.Debug("entity store lookup failed, retrying", "kind", kind, "wait", wait, "error", err)
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		c.log.Warn("entity store lookup failed", "kind", kind, "name", name, "error", err)
		return errs.NewReferenceNotFoundErrorWithCause(kind, name, err)
	}

	for _, candidate := range extract(body) {
		if candidate == name {
			return nil
		}
	}
	return errs.NewReferenceNotFoundError(kind, name)
}

func (c *Client) fetch(ctx context.Context, path string) (listing, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath(path).String(), nil)
	if err != nil {
		return listing{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return listing{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return listing{}, err
		}
		return listing{}, backoff.Permanent(err)
	}

	var body listing
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return listing{}, backoff.Permanent(fmt.Errorf("GET %s: decode: %w", path, err))
	}
	return body, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0
	return b
}
