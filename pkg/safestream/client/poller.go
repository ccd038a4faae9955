package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/safestream/safestream-go/internal/polling"
	"github.com/safestream/safestream-go/pkg/metrics"
)

// PollInterval is the fixed wait between two status checks of a pending resource.
const PollInterval = polling.DefaultInterval

// Resolver fetches the current state of a submitted resource.
type Resolver[T any] func(ctx context.Context, current *T) (*T, error)

// Await describes a job submission and how to wait for its completion.
type Await[T any] struct {
	// Resource names the awaited resource in logs, metrics and errors, e.g. "video".
	Resource string
	// Endpoint is the submission path relative to the API root.
	Endpoint string
	Payload  any
	// Terminal reports whether no further status transition is expected.
	Terminal func(*T) bool
	Resolve  Resolver[T]
	// Timeout is the polling budget. Zero or negative returns right after submission.
	Timeout time.Duration
}

// SubmitAndAwait posts the payload once and, unless the returned resource is already
// terminal or no positive timeout was given, polls it until it becomes terminal.
// Running out of time is an *ErrTimeout; a cancelled wait is an *ErrInterrupted.
func SubmitAndAwait[T any](ctx context.Context, c *Client, req Await[T]) (*T, error) {
	if req.Terminal == nil || req.Resolve == nil {
		return nil, NewErrValidation("a terminal predicate and a resolver are required to await %s", req.Resource)
	}

	resp, err := c.PostResource(ctx, req.Endpoint, req.Payload)
	if err != nil {
		return nil, err
	}
	submitted, err := Decode[T](resp)
	if err != nil {
		return nil, err
	}

	if req.Terminal(&submitted) || req.Timeout <= 0 {
		return &submitted, nil
	}

	return waitUntilTerminal(ctx, c, &submitted, req)
}

func waitUntilTerminal[T any](ctx context.Context, c *Client, current *T, req Await[T]) (*T, error) {
	log := c.log.With("resource", req.Resource, "timeout", req.Timeout)
	log.Debug("waiting for resource to reach a terminal state")

	start := time.Now()
	for time.Since(start) < req.Timeout {
		next, err := req.Resolve(ctx, current)
		if err == nil && next == nil {
			err = fmt.Errorf("%s could not be resolved", req.Resource)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				metrics.IncreasePollsMetric(req.Resource, metrics.OutcomeInterrupted)
				return nil, NewErrInterrupted(req.Resource, ctxErr)
			}
			metrics.IncreasePollsMetric(req.Resource, metrics.OutcomeError)
			return nil, err
		}

		if req.Terminal(next) {
			metrics.IncreasePollsMetric(req.Resource, metrics.OutcomeTerminal)
			log.Debugw("resource reached a terminal state", "elapsed", time.Since(start))
			return next, nil
		}
		metrics.IncreasePollsMetric(req.Resource, metrics.OutcomePending)
		current = next

		if err := sleep(ctx, polling.Interval()); err != nil {
			metrics.IncreasePollsMetric(req.Resource, metrics.OutcomeInterrupted)
			return nil, NewErrInterrupted(req.Resource, err)
		}
	}

	metrics.IncreasePollsMetric(req.Resource, metrics.OutcomeTimeout)
	log.Infow("timeout reached waiting for resource", "elapsed", time.Since(start))
	return nil, NewErrTimeout(req.Resource, req.Timeout)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BySelfLink re-fetches a resource from the self link the server returned with it.
func BySelfLink[T any](c *Client, hrefOf func(*T) string) Resolver[T] {
	return func(ctx context.Context, current *T) (*T, error) {
		href := hrefOf(current)
		if href == "" {
			return nil, fmt.Errorf("resource has no self link to poll")
		}
		target, err := c.ResolveURL(href)
		if err != nil {
			return nil, err
		}
		resp, err := c.Get(ctx, target)
		if err != nil {
			return nil, err
		}
		next, err := Decode[T](resp)
		if err != nil {
			return nil, err
		}
		return &next, nil
	}
}

// ByLookup re-fetches a resource through a search by key, e.g. videos?key=.
// keyOf picks the lookup key from the last observed state of the resource.
func ByLookup[T any](keyOf func(*T) string, find func(ctx context.Context, key string) (*T, error)) Resolver[T] {
	return func(ctx context.Context, current *T) (*T, error) {
		key := keyOf(current)
		if key == "" {
			return nil, fmt.Errorf("resource has no key to look it up by")
		}
		return find(ctx, key)
	}
}

// ResolveURL returns ref as an absolute URL, resolving relative references against the API root.
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid resource link %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	base, err := url.Parse(c.config.Service.BaseURL())
	if err != nil {
		return "", fmt.Errorf("invalid api base url: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}
