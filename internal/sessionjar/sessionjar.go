// Package sessionjar provides the http.CookieJar that carries the client's
// credentials. Cookies are kept in a standard jar and mirrored to a keeper
// so a later process can pick up the same session.
package sessionjar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/patric-chuzhbe/smrs/internal/logger"
	"github.com/patric-chuzhbe/smrs/internal/models"
)

type cookieKeeper interface {
	LoadCookies(ctx context.Context) (map[string][]models.StoredCookie, error)
	SaveCookies(ctx context.Context, origin string, cookies []models.StoredCookie) error
}

// Jar implements http.CookieJar.
type Jar struct {
	inner  *cookiejar.Jar
	keeper cookieKeeper
	now    func() time.Time

	mu      sync.Mutex
	origins map[string][]models.StoredCookie
}

type Option func(*Jar)

// WithClock replaces time.Now, used to resolve Max-Age and expiry.
func WithClock(now func() time.Time) Option {
	return func(j *Jar) {
		j.now = now
	}
}

// New builds a jar and replays everything the keeper has stored.
func New(ctx context.Context, keeper cookieKeeper, optionsProto ...Option) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("in internal/sessionjar/sessionjar.go/New(): error while `cookiejar.New()` calling: %w", err)
	}

	jar := &Jar{
		inner:   inner,
		keeper:  keeper,
		now:     time.Now,
		origins: map[string][]models.StoredCookie{},
	}
	for _, protoOption := range optionsProto {
		protoOption(jar)
	}

	stored, err := keeper.LoadCookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/sessionjar/sessionjar.go/New(): error while `keeper.LoadCookies()` calling: %w", err)
	}

	now := jar.now()
	for origin, cookies := range stored {
		u, err := url.Parse(origin)
		if err != nil {
			logger.Log.Debugln("skipping stored cookies of unparsable origin", "origin", origin, zap.Error(err))
			continue
		}

		live := make([]models.StoredCookie, 0, len(cookies))
		httpCookies := make([]*http.Cookie, 0, len(cookies))
		for _, c := range cookies {
			if !c.Expires.IsZero() && !c.Expires.After(now) {
				continue
			}
			live = append(live, c)
			httpCookies = append(httpCookies, toHTTPCookie(c))
		}
		if len(live) == 0 {
			continue
		}

		jar.origins[origin] = live
		jar.inner.SetCookies(u, httpCookies)
	}

	return jar, nil
}

// Cookies returns the cookies to send in a request for u.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// SetCookies handles the receipt of cookies in a reply for u and hands the
// merged set for u's origin to the keeper.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	origin := u.Scheme + "://" + u.Host

	j.mu.Lock()
	merged := merge(j.origins[origin], cookies, defaultPath(u), j.now())
	if len(merged) == 0 {
		delete(j.origins, origin)
	} else {
		j.origins[origin] = merged
	}
	j.mu.Unlock()

	if err := j.keeper.SaveCookies(context.Background(), origin, merged); err != nil {
		logger.Log.Debugln("Error calling the `j.keeper.SaveCookies()`: ", zap.Error(err))
	}
}

func merge(current []models.StoredCookie, incoming []*http.Cookie, fallbackPath string, now time.Time) []models.StoredCookie {
	result := append([]models.StoredCookie{}, current...)

	for _, c := range incoming {
		stored := fromHTTPCookie(c, now)
		if stored.Path == "" || stored.Path[0] != '/' {
			stored.Path = fallbackPath
		}

		index := -1
		for i, existing := range result {
			if existing.Name == stored.Name && existing.Path == stored.Path && existing.Domain == stored.Domain {
				index = i
				break
			}
		}

		expired := c.MaxAge < 0 || (!stored.Expires.IsZero() && !stored.Expires.After(now))
		switch {
		case expired && index >= 0:
			result = append(result[:index], result[index+1:]...)
		case expired:
		case index >= 0:
			result[index] = stored
		default:
			result = append(result, stored)
		}
	}

	return result
}

// defaultPath is the RFC 6265 section 5.1.4 default-path of u.
func defaultPath(u *url.URL) string {
	path := u.Path
	if path == "" || path[0] != '/' {
		return "/"
	}

	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}

	return path[:i]
}

func fromHTTPCookie(c *http.Cookie, now time.Time) models.StoredCookie {
	expires := c.Expires
	if c.MaxAge > 0 {
		expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}

	return models.StoredCookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  expires.UTC(),
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}

func toHTTPCookie(c models.StoredCookie) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}
