package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"giggate/internal/gig/models"
	id "giggate/pkg/domain"
	"giggate/pkg/platform/sentinel"
)

// Postgres persists gigs in PostgreSQL. Record-level writes are atomic;
// Execute uses SELECT ... FOR UPDATE as the row-level lock.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const gigColumns = `id, creator, title, description, types, bounty_amount, min_trust_score, status, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, gig *models.Gig) error {
	query := `
		INSERT INTO gigs (` + gigColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		gig.ID.String(),
		gig.Creator.String(),
		gig.Title,
		gig.Description,
		pq.Array(gig.Types),
		gig.BountyAmount.Int64(),
		gig.MinTrustScore.Float64(),
		string(gig.Status),
		gig.CreatedAt,
		gig.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create gig: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, gigID id.GigID) (*models.Gig, error) {
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE id = $1`
	gig, err := scanGig(s.db.QueryRowContext(ctx, query, gigID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find gig: %w", err)
	}
	return gig, nil
}

func (s *Postgres) ListActive(ctx context.Context) ([]*models.Gig, error) {
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE status = $1`
	rows, err := s.db.QueryContext(ctx, query, string(models.GigStatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active gigs: %w", err)
	}
	defer rows.Close()

	var out []*models.Gig
	for rows.Next() {
		gig, err := scanGig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gig: %w", err)
		}
		out = append(out, gig)
	}
	return out, rows.Err()
}

// Execute runs validate-then-mutate inside a transaction holding the row lock,
// mirroring the in-memory store's mutex discipline.
func (s *Postgres) Execute(ctx context.Context, gigID id.GigID, validate func(*models.Gig) error, mutate func(*models.Gig)) (*models.Gig, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + gigColumns + ` FROM gigs WHERE id = $1 FOR UPDATE`
	gig, err := scanGig(tx.QueryRowContext(ctx, query, gigID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock gig: %w", err)
	}

	if err := validate(gig); err != nil {
		return nil, err
	}
	mutate(gig)

	update := `UPDATE gigs SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, gig.ID.String(), string(gig.Status), gig.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update gig: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return gig, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGig(row rowScanner) (*models.Gig, error) {
	var (
		gig        models.Gig
		rawID      string
		rawCreator string
		rawTypes   pq.StringArray
		rawBounty  int64
		rawScore   float64
		rawStatus  string
	)
	if err := row.Scan(&rawID, &rawCreator, &gig.Title, &gig.Description, &rawTypes,
		&rawBounty, &rawScore, &rawStatus, &gig.CreatedAt, &gig.UpdatedAt); err != nil {
		return nil, err
	}
	gigID, err := id.ParseGigID(rawID)
	if err != nil {
		return nil, err
	}
	gig.ID = gigID
	gig.Creator = id.Identity(rawCreator)
	gig.Types = rawTypes
	gig.BountyAmount = id.Wei(rawBounty)
	gig.MinTrustScore = id.TrustScore(rawScore)
	gig.Status = models.GigStatus(rawStatus)
	return &gig, nil
}
