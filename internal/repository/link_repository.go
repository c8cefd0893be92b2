package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"linkly-be/internal/entities"
)

var (
	// ErrNotFound is returned when no link exists for the given short code or URL
	ErrNotFound = errors.New("link not found")
	// ErrDuplicateCode is returned when an insert loses the race on the
	// short_code uniqueness constraint
	ErrDuplicateCode = errors.New("short code already taken")
)

// LinkRepository defines the storage operations the registry depends on.
// The uniqueness constraint on short_code in the database is the correctness
// backstop for concurrent inserts; Insert surfaces it as ErrDuplicateCode.
type LinkRepository interface {
	Insert(shortCode, originalURL string, userID *string) (*entities.Link, error)
	FindByCode(shortCode string) (*entities.Link, error)
	FindByURL(originalURL string) (*entities.Link, error)
	IncrementClicks(shortCode string) error
	RecordClick(linkID, userAgent, ip, referer string) error
	ClickTimeline(linkID string, hours int) ([]entities.ClickBucket, error)
	GetByUserID(userID string) ([]*entities.Link, error)
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a Postgres-backed link repository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

// Insert persists a new link with clicks = 0
func (r *linkRepository) Insert(shortCode, originalURL string, userID *string) (*entities.Link, error) {
	query := `
		INSERT INTO links (short_code, original_url, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, short_code, original_url, user_id, clicks, created_at
	`

	var link entities.Link
	err := r.db.QueryRow(query, shortCode, originalURL, userID).Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.UserID,
		&link.Clicks,
		&link.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to insert link: %w", err)
	}

	return &link, nil
}

// FindByCode looks up a link by its short code
func (r *linkRepository) FindByCode(shortCode string) (*entities.Link, error) {
	query := `
		SELECT id, short_code, original_url, user_id, clicks, created_at
		FROM links
		WHERE short_code = $1
	`
	return r.scanOne(r.db.QueryRow(query, shortCode))
}

// FindByURL returns the link previously created for an original URL, if any.
// When several exist (custom aliases for the same target), the oldest
// generated one wins so repeated submissions stay stable.
func (r *linkRepository) FindByURL(originalURL string) (*entities.Link, error) {
	query := `
		SELECT id, short_code, original_url, user_id, clicks, created_at
		FROM links
		WHERE original_url = $1
		ORDER BY created_at ASC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, originalURL))
}

// IncrementClicks bumps the click counter by one as a single atomic update
func (r *linkRepository) IncrementClicks(shortCode string) error {
	result, err := r.db.Exec(`
		UPDATE links
		SET clicks = clicks + 1
		WHERE short_code = $1
	`, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordClick logs one redirect event for the timeline
func (r *linkRepository) RecordClick(linkID, userAgent, ip, referer string) error {
	_, err := r.db.Exec(`
		INSERT INTO link_clicks (link_id, user_agent, ip_address, referer)
		VALUES ($1, $2, $3, $4)
	`, linkID, userAgent, ip, referer)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

// ClickTimeline aggregates redirect events into time buckets over the last
// `hours` hours. Up to a day the bucket is an hour, beyond that a day.
func (r *linkRepository) ClickTimeline(linkID string, hours int) ([]entities.ClickBucket, error) {
	unit := "hour"
	if hours > 24 {
		unit = "day"
	}

	query := fmt.Sprintf(`
		SELECT DATE_TRUNC('%s', clicked_at) AS bucket, COUNT(*)
		FROM link_clicks
		WHERE link_id = $1
		AND clicked_at >= NOW() - INTERVAL '%d hours'
		GROUP BY bucket
		ORDER BY bucket ASC
	`, unit, hours)

	rows, err := r.db.Query(query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get click timeline: %w", err)
	}
	defer rows.Close()

	var buckets []entities.ClickBucket
	for rows.Next() {
		var b entities.ClickBucket
		if err := rows.Scan(&b.Time, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan timeline bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeline: %w", err)
	}

	return buckets, nil
}

// GetByUserID retrieves all links owned by a user
func (r *linkRepository) GetByUserID(userID string) ([]*entities.Link, error) {
	query := `
		SELECT id, short_code, original_url, user_id, clicks, created_at
		FROM links
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}
	defer rows.Close()

	var links []*entities.Link
	for rows.Next() {
		var link entities.Link
		err := rows.Scan(
			&link.ID,
			&link.ShortCode,
			&link.OriginalURL,
			&link.UserID,
			&link.Clicks,
			&link.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, &link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func (r *linkRepository) scanOne(row *sql.Row) (*entities.Link, error) {
	var link entities.Link
	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.UserID,
		&link.Clicks,
		&link.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return &link, nil
}
