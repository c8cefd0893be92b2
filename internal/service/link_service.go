package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"linkly-be/internal/cache"
	"linkly-be/internal/entities"
	"linkly-be/internal/models"
	"linkly-be/internal/repository"
)

var (
	// ErrInvalidURL is returned when the submitted URL fails the URL-shape rule
	ErrInvalidURL = errors.New("invalid URL: must be http(s) with a valid host")
	// ErrInvalidAlias is returned for a malformed or reserved custom alias
	ErrInvalidAlias = errors.New("alias must be 3-20 characters of letters, digits, hyphens or underscores")
	// ErrAliasTaken is returned when the requested custom alias already exists
	ErrAliasTaken = errors.New("alias already taken")
	// ErrNotFound is returned when no link exists for a short code
	ErrNotFound = errors.New("short link not found")
	// ErrCodeSpaceExhausted is returned when the generation retry budget runs out
	ErrCodeSpaceExhausted = errors.New("failed to generate a unique short code")
)

// maxGenerateAttempts bounds the generate-and-insert retry loop. With a
// 62^6 code space collisions are vanishingly rare, so hitting the budget
// means something is wrong with the storage rather than with luck.
const maxGenerateAttempts = 10

// linkCacheTTL is how long resolved links stay in the cache
const linkCacheTTL = time.Hour

// ClickInfo carries the redirect request metadata recorded per click
type ClickInfo struct {
	UserAgent string
	IP        string
	Referer   string
}

// LinkService is the registry owning short-code assignment, resolution
// and click accounting
type LinkService interface {
	// Shorten validates and registers a URL. The boolean reports whether a
	// new mapping was created; resubmitting a known URL returns the
	// existing mapping unchanged.
	Shorten(req *models.ShortenRequest, userID *string) (*models.ShortenResponse, bool, error)
	// Resolve returns the original URL for a code and increments its
	// click counter.
	Resolve(shortCode string, click ClickInfo) (string, error)
	// Stats returns the link metadata without side effects.
	Stats(shortCode string) (*models.StatsResponse, error)
	// Timeline returns bucketed click counts over the last `hours` hours.
	Timeline(shortCode string, hours int) ([]models.TimelineBucket, error)
	// UserLinks lists the links owned by a user.
	UserLinks(userID string) ([]*models.StatsResponse, error)
}

type linkService struct {
	repo    repository.LinkRepository
	cache   cache.Cache
	baseURL string
	ctx     context.Context
}

// NewLinkService creates the registry. cacheClient may be nil, in which
// case every lookup goes to the repository.
func NewLinkService(repo repository.LinkRepository, cacheClient cache.Cache, baseURL string) LinkService {
	return &linkService{
		repo:    repo,
		cache:   cacheClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		ctx:     context.Background(),
	}
}

func (s *linkService) Shorten(req *models.ShortenRequest, userID *string) (*models.ShortenResponse, bool, error) {
	if err := validateURL(req.URL); err != nil {
		return nil, false, err
	}

	// Custom alias path: distinct codes for the same destination are
	// allowed here, so no idempotency lookup.
	if req.Alias != nil && strings.TrimSpace(*req.Alias) != "" {
		alias := strings.TrimSpace(*req.Alias)
		if err := validateAlias(alias); err != nil {
			return nil, false, err
		}

		link, err := s.repo.Insert(alias, req.URL, userID)
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, false, ErrAliasTaken
		}
		if err != nil {
			return nil, false, err
		}

		s.cacheLink(link)
		return s.toResponse(link), true, nil
	}

	// Resubmitting a URL returns its existing mapping: no new code, no
	// counter reset.
	existing, err := s.repo.FindByURL(req.URL)
	if err == nil {
		return s.toResponse(existing), false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	link, err := s.insertWithFreshCode(req.URL, userID)
	if err != nil {
		return nil, false, err
	}

	s.cacheLink(link)
	return s.toResponse(link), true, nil
}

// insertWithFreshCode rolls random codes until one survives the uniqueness
// constraint, up to the retry budget. The constraint is the backstop: two
// concurrent requests can generate the same code, only one insert wins and
// the loser re-rolls.
func (s *linkService) insertWithFreshCode(originalURL string, userID *string) (*entities.Link, error) {
	var link *entities.Link

	backoff := retry.WithMaxRetries(maxGenerateAttempts, retry.NewConstant(time.Millisecond))
	err := retry.Do(s.ctx, backoff, func(ctx context.Context) error {
		code, err := generateShortCode()
		if err != nil {
			return err
		}

		created, err := s.repo.Insert(code, originalURL, userID)
		if errors.Is(err, repository.ErrDuplicateCode) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}

		link = created
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, ErrCodeSpaceExhausted
		}
		return nil, err
	}

	return link, nil
}

func (s *linkService) Resolve(shortCode string, click ClickInfo) (string, error) {
	link, ok := s.cachedLink(shortCode)
	if !ok {
		var err error
		link, err = s.repo.FindByCode(shortCode)
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", err
		}
		s.cacheLink(link)
	}

	// Single atomic SQL increment, not read-modify-write, so concurrent
	// redirects of the same code never lose updates.
	if err := s.repo.IncrementClicks(shortCode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.dropCachedLink(shortCode)
			return "", ErrNotFound
		}
		return "", err
	}

	// Click log is fire and forget; it must never block the redirect.
	go func(linkID string, click ClickInfo) {
		if err := s.repo.RecordClick(linkID, click.UserAgent, click.IP, click.Referer); err != nil {
			log.Printf("Warning: failed to record click for %s: %v", shortCode, err)
		}
	}(link.ID, click)

	return link.OriginalURL, nil
}

func (s *linkService) Stats(shortCode string) (*models.StatsResponse, error) {
	link, err := s.repo.FindByCode(shortCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.toStats(link), nil
}

func (s *linkService) Timeline(shortCode string, hours int) ([]models.TimelineBucket, error) {
	link, err := s.repo.FindByCode(shortCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	buckets, err := s.repo.ClickTimeline(link.ID, hours)
	if err != nil {
		return nil, err
	}

	timeline := make([]models.TimelineBucket, len(buckets))
	for i, b := range buckets {
		timeline[i] = models.TimelineBucket{Time: b.Time, Count: b.Count}
	}
	return timeline, nil
}

func (s *linkService) UserLinks(userID string) ([]*models.StatsResponse, error) {
	links, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.StatsResponse, len(links))
	for i, link := range links {
		responses[i] = s.toStats(link)
	}
	return responses, nil
}

// ============ CACHE HELPERS ============

func (s *linkService) cacheLink(link *entities.Link) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(s.ctx, cacheKey(link.ShortCode), link, linkCacheTTL); err != nil {
		log.Printf("Warning: failed to cache link %s: %v", link.ShortCode, err)
	}
}

func (s *linkService) cachedLink(shortCode string) (*entities.Link, bool) {
	if s.cache == nil {
		return nil, false
	}
	var link entities.Link
	if err := s.cache.GetJSON(s.ctx, cacheKey(shortCode), &link); err != nil {
		return nil, false
	}
	return &link, true
}

func (s *linkService) dropCachedLink(shortCode string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(s.ctx, cacheKey(shortCode)); err != nil {
		log.Printf("Warning: failed to drop cached link %s: %v", shortCode, err)
	}
}

func cacheKey(shortCode string) string {
	return fmt.Sprintf("link:%s", shortCode)
}

// ============ RESPONSE MAPPING ============

func (s *linkService) toResponse(link *entities.Link) *models.ShortenResponse {
	return &models.ShortenResponse{
		ShortCode:   link.ShortCode,
		ShortURL:    fmt.Sprintf("%s/%s", s.baseURL, link.ShortCode),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}
}

func (s *linkService) toStats(link *entities.Link) *models.StatsResponse {
	return &models.StatsResponse{
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		Clicks:      link.Clicks,
		CreatedAt:   link.CreatedAt,
	}
}
