package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"creditpool/core"
	"creditpool/pkg/id"

	"github.com/asaskevich/govalidator"
	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Config session config
type Config struct {
	Secret   string
	Issuer   string
	Capacity int
	// Admins identities that get the admin role
	Admins []string
	// Clock overrides the wall clock, used by tests
	Clock core.Clock
}

const (
	roleUser  = "user"
	roleAdmin = "admin"
)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// New new session, tokens are hs256 signed with the configured secret
func New(cfg Config) core.Session {
	if cfg.Clock == nil {
		cfg.Clock = core.SystemClock
	}

	var s core.Session = &session{
		cfg: cfg,
		sf:  &singleflight.Group{},
	}

	if cfg.Capacity > 0 {
		s = &cacheSession{
			Session: s,
			clock:   cfg.Clock,
			tokens:  gcache.New(cfg.Capacity).LRU().Build(),
		}
	}

	return s
}

type session struct {
	cfg Config
	sf  *singleflight.Group
}

func (s *session) Issue(ctx context.Context, identity string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", core.ErrInvalidIdentity
	}

	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}

	role := roleUser
	if govalidator.IsIn(identity, s.cfg.Admins...) {
		role = roleAdmin
	}

	now := s.cfg.Clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.GenTraceID(),
			Issuer:    s.cfg.Issuer,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	})

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("session.Issue")
		return "", err
	}

	return signed, nil
}

func (s *session) Login(ctx context.Context, accessToken string) (*core.User, error) {
	user, err, _ := s.sf.Do(accessToken, func() (interface{}, error) {
		var claim claims
		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(s.cfg.Clock.Now),
		}
		if s.cfg.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
		}

		if _, err := jwt.ParseWithClaims(accessToken, &claim, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.Secret), nil
		}, opts...); err != nil {
			return nil, err
		}

		if !id.IsTraceID(claim.ID) {
			return nil, errors.New("invalid token id")
		}

		if claim.Subject == "" {
			return nil, errors.New("token subject missing")
		}

		user := &core.User{
			Identity: claim.Subject,
			Role:     claim.Role,
		}
		if claim.ExpiresAt != nil {
			user.ExpiresAt = claim.ExpiresAt.Time
		}

		return user, nil
	})

	if err != nil {
		return nil, err
	}

	return user.(*core.User), nil
}

type cacheSession struct {
	core.Session
	clock  core.Clock
	tokens gcache.Cache
}

func (s *cacheSession) Login(ctx context.Context, accessToken string) (*core.User, error) {
	if v, err := s.tokens.Get(accessToken); err == nil {
		return v.(*core.User), nil
	}

	user, err := s.Session.Login(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if ttl := user.ExpiresAt.Sub(s.clock.Now()); ttl > 0 {
		_ = s.tokens.SetWithExpire(accessToken, user, ttl)
	}

	return user, nil
}
