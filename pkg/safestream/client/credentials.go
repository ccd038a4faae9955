package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/safestream/safestream-go/pkg/metrics"
)

// Credential is the bearer token sent with every API request.
type Credential string

// ExpiresAt returns the exp claim of the token, read without verifying the signature.
// The second value is false when the token is not a JWT or carries no expiry.
func (c Credential) ExpiresAt() (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(string(c), claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenSource acquires a new credential from the token endpoint.
type TokenSource func(ctx context.Context) (Credential, error)

const tokenFlight = "token"

// CredentialCache is a lazily filled, never invalidated credential cell.
// Concurrent callers that find it empty share a single acquisition; a failed
// acquisition is not remembered, so the next caller tries again.
type CredentialCache struct {
	mu         sync.RWMutex
	credential Credential
	group      singleflight.Group
}

func NewCredentialCache() *CredentialCache {
	return &CredentialCache{}
}

// Cached returns the stored credential, if any.
func (c *CredentialCache) Cached() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential, c.credential != ""
}

// Token returns the cached credential or acquires one through source.
// Every error is returned as *ErrAuth.
func (c *CredentialCache) Token(ctx context.Context, source TokenSource) (Credential, error) {
	if credential, ok := c.Cached(); ok {
		return credential, nil
	}

	// the flight outlives any single caller so that one cancelled caller does not fail the others
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(tokenFlight, func() (any, error) {
		if credential, ok := c.Cached(); ok {
			return credential, nil
		}

		credential, err := source(flightCtx)
		if err == nil && credential == "" {
			err = errors.New("token endpoint returned an empty token")
		}
		if err != nil {
			metrics.IncreaseTokenFetchesMetric(metrics.ResultFailure)
			return Credential(""), err
		}

		c.mu.Lock()
		c.credential = credential
		c.mu.Unlock()

		metrics.IncreaseTokenFetchesMetric(metrics.ResultSuccess)
		return credential, nil
	})

	select {
	case <-ctx.Done():
		return "", NewErrAuth(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", NewErrAuth(res.Err)
		}
		return res.Val.(Credential), nil
	}
}

// credentials shared by every client of the process, keyed by token endpoint and api key
var sharedCredentials = struct {
	sync.Mutex
	caches map[string]*CredentialCache
}{caches: map[string]*CredentialCache{}}

func sharedCredentialCache(tokenURL, apiKey string) *CredentialCache {
	sharedCredentials.Lock()
	defer sharedCredentials.Unlock()

	key := tokenURL + "\x00" + apiKey
	cache, ok := sharedCredentials.caches[key]
	if !ok {
		cache = NewCredentialCache()
		sharedCredentials.caches[key] = cache
	}
	return cache
}
