package lookup

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/internal/resilience"
	"github.com/sells-group/contact-enrich/pkg/proxycurl"
)

// Config tunes the searches.
type Config struct {
	// MaxResults caps case-study and media results. Default: 10.
	MaxResults int
	// AboutMaxResults caps about-page results. Default: 5.
	AboutMaxResults int
	// RecencyDays bounds how far back media searches look. Default: 365.
	RecencyDays int
}

func (c *Config) defaults() {
	if c.MaxResults <= 0 {
		c.MaxResults = 10
	}
	if c.AboutMaxResults <= 0 {
		c.AboutMaxResults = 5
	}
	if c.RecencyDays <= 0 {
		c.RecencyDays = 365
	}
}

// Service runs searches and profile fetches through per-provider guards.
type Service struct {
	search       SearchBackend
	profiles     proxycurl.Client
	searchGuard  *resilience.Guard
	profileGuard *resilience.Guard
	cfg          Config
	now          func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a lookup service. Guards may be shared with other
// services calling the same providers.
func NewService(search SearchBackend, profiles proxycurl.Client, searchGuard, profileGuard *resilience.Guard, cfg Config, opts ...ServiceOption) *Service {
	cfg.defaults()
	s := &Service{
		search:       search,
		profiles:     profiles,
		searchGuard:  searchGuard,
		profileGuard: profileGuard,
		cfg:          cfg,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) runSearch(ctx context.Context, query string, maxResults int) ([]model.Link, error) {
	return resilience.Do(ctx, s.searchGuard, func(ctx context.Context) ([]model.Link, error) {
		return s.search.Search(ctx, query, maxResults)
	})
}

// AboutPages searches a company website for its about pages.
func (s *Service) AboutPages(ctx context.Context, website string) ([]model.Link, error) {
	links, err := s.runSearch(ctx, AboutQuery(website), s.cfg.AboutMaxResults)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: about pages")
	}
	return links, nil
}

// CaseStudies searches a company website for case studies and similar
// proof points. Result dates are not kept.
func (s *Service) CaseStudies(ctx context.Context, website string) ([]model.Link, error) {
	links, err := s.runSearch(ctx, CaseStudyQuery(website), s.cfg.MaxResults)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: case studies")
	}
	for i := range links {
		links[i].Date = ""
	}
	return links, nil
}

// MediaMentions searches for recent interviews and podcasts featuring a
// person and ranks them by recency.
func (s *Service) MediaMentions(ctx context.Context, personName, company string) ([]model.Link, error) {
	now := s.now()
	since := now.AddDate(0, 0, -s.cfg.RecencyDays)
	links, err := s.runSearch(ctx, MediaQuery(personName, company, since), s.cfg.MaxResults)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: media mentions")
	}
	return RankMedia(links, now, s.cfg.MaxResults), nil
}

// FetchProfile fetches a person profile. A profile the provider does not
// have yields (nil, nil).
func (s *Service) FetchProfile(ctx context.Context, profileURL string) (*model.ProfilePayload, error) {
	p, err := resilience.Do(ctx, s.profileGuard, func(ctx context.Context) (*proxycurl.Profile, error) {
		return s.profiles.Profile(ctx, profileURL)
	})
	if err != nil {
		return nil, eris.Wrap(err, "lookup: fetch profile")
	}
	if p == nil {
		zap.L().Info("lookup: no profile", zap.String("profile_url", profileURL))
		return nil, nil
	}
	return toProfilePayload(p), nil
}

// ImageFetcher is the image store being guarded.
type ImageFetcher interface {
	GetOrFetch(ctx context.Context, url, key string) (string, error)
}

// GuardedImages bounds image downloads with a guard.
type GuardedImages struct {
	store ImageFetcher
	guard *resilience.Guard
}

// NewGuardedImages wraps an image store.
func NewGuardedImages(store ImageFetcher, guard *resilience.Guard) *GuardedImages {
	return &GuardedImages{store: store, guard: guard}
}

// GetOrFetch implements the enrichment image store contract.
func (g *GuardedImages) GetOrFetch(ctx context.Context, url, key string) (string, error) {
	return resilience.Do(ctx, g.guard, func(ctx context.Context) (string, error) {
		return g.store.GetOrFetch(ctx, url, key)
	})
}
