package attestation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"creditpool/core"
	"creditpool/pkg/resthttp"

	"github.com/avast/retry-go/v4"
	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const (
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
)

// Config registry client config
type Config struct {
	Endpoint string
	// CacheTTL how long a lookup result is reused, zero disables caching
	CacheTTL time.Duration
	Capacity int
	Attempts uint
}

type registry struct {
	endpoint string
	attempts uint
	sf       *singleflight.Group
}

// New attestation registry client, optionally cached
func New(cfg Config) core.AttestationService {
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}

	var s core.AttestationService = &registry{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		attempts: attempts,
		sf:       &singleflight.Group{},
	}

	if cfg.CacheTTL > 0 && cfg.Capacity > 0 {
		s = &cacheRegistry{
			AttestationService: s,
			ttl:                cfg.CacheTTL,
			flags:              gcache.New(cfg.Capacity).LRU().Build(),
		}
	}

	return s
}

func (r *registry) IsVerified(ctx context.Context, identity string) (bool, error) {
	v, err, _ := r.sf.Do(identity, func() (interface{}, error) {
		return r.lookup(ctx, identity)
	})

	if err != nil {
		return false, err
	}

	return v.(bool), nil
}

func (r *registry) lookup(ctx context.Context, identity string) (bool, error) {
	log := logger.FromContext(ctx).WithField("identity", identity)
	uri := fmt.Sprintf("%s/attestations/%s", r.endpoint, url.PathEscape(identity))

	return retry.DoWithData(func() (bool, error) {
		var body struct {
			Verified bool `json:"verified"`
		}

		if _, err := resthttp.Execute(resthttp.Request(ctx), "GET", uri, nil, &body); err != nil {
			return false, err
		}

		return body.Verified, nil
	},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(defaultDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *resthttp.StatusError
			if errors.As(err, &se) {
				return se.Temporary()
			}

			return true
		}),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Debugf("attestation lookup attempt %d failed", n+1)
		}),
	)
}

type cacheRegistry struct {
	core.AttestationService
	ttl   time.Duration
	flags gcache.Cache
}

func (r *cacheRegistry) IsVerified(ctx context.Context, identity string) (bool, error) {
	if v, err := r.flags.Get(identity); err == nil {
		return v.(bool), nil
	}

	verified, err := r.AttestationService.IsVerified(ctx, identity)
	if err != nil {
		return false, err
	}

	_ = r.flags.SetWithExpire(identity, verified, r.ttl)
	return verified, nil
}

// Static fixed allow list
type Static struct {
	verified map[string]bool
}

// NewStatic identities in the list are verified, everyone else is not
func NewStatic(identities ...string) *Static {
	s := &Static{verified: map[string]bool{}}
	for _, identity := range identities {
		s.verified[identity] = true
	}

	return s
}

// IsVerified is verified
func (s *Static) IsVerified(ctx context.Context, identity string) (bool, error) {
	return s.verified[identity], nil
}
