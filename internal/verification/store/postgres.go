package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"giggate/internal/verification/models"
	id "giggate/pkg/domain"
	"giggate/pkg/platform/sentinel"
)

// Postgres persists verification requests. The table is append-only except
// for the status columns; "current" is derived by recency, never stored.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const requestColumns = `id, identity, level, commitment, deposit_wei, status, verifier, reason, created_at, updated_at, decided_at, dispatched_at`

func (s *Postgres) Create(ctx context.Context, req *models.Request) error {
	query := `
		INSERT INTO verification_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		req.ID.String(),
		req.Identity.String(),
		int(req.Level),
		req.Commitment.String(),
		req.Deposit.Int64(),
		string(req.Status),
		req.Verifier,
		req.Reason,
		req.CreatedAt,
		req.UpdatedAt,
		req.DecidedAt,
		req.DispatchedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create verification request: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM verification_requests WHERE id = $1`
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, requestID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification request: %w", err)
	}
	return req, nil
}

func (s *Postgres) FindCurrent(ctx context.Context, identity id.Identity) (*models.Request, error) {
	query := `
		SELECT ` + requestColumns + ` FROM verification_requests
		WHERE identity = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, identity.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find current verification request: %w", err)
	}
	return req, nil
}

func (s *Postgres) ListByIdentity(ctx context.Context, identity id.Identity) ([]*models.Request, error) {
	query := `
		SELECT ` + requestColumns + ` FROM verification_requests
		WHERE identity = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, identity.String())
	if err != nil {
		return nil, fmt.Errorf("list verification requests: %w", err)
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Execute runs validate-then-mutate under SELECT ... FOR UPDATE so the
// terminal-state guard holds across racing callbacks and withdrawals.
func (s *Postgres) Execute(ctx context.Context, requestID id.RequestID, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + requestColumns + ` FROM verification_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(tx.QueryRowContext(ctx, query, requestID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock verification request: %w", err)
	}

	if err := validate(req); err != nil {
		return nil, err
	}
	mutate(req)

	update := `
		UPDATE verification_requests
		SET status = $2, verifier = $3, reason = $4, updated_at = $5, decided_at = $6, dispatched_at = $7
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		req.ID.String(), string(req.Status), req.Verifier, req.Reason,
		req.UpdatedAt, req.DecidedAt, req.DispatchedAt); err != nil {
		return nil, fmt.Errorf("update verification request: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return req, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		req           models.Request
		rawID         string
		rawIdentity   string
		rawLevel      int
		rawCommitment string
		rawDeposit    int64
		rawStatus     string
		decidedAt     sql.NullTime
		dispatchedAt  sql.NullTime
	)
	if err := row.Scan(&rawID, &rawIdentity, &rawLevel, &rawCommitment, &rawDeposit,
		&rawStatus, &req.Verifier, &req.Reason, &req.CreatedAt, &req.UpdatedAt,
		&decidedAt, &dispatchedAt); err != nil {
		return nil, err
	}
	requestID, err := id.ParseRequestID(rawID)
	if err != nil {
		return nil, err
	}
	req.ID = requestID
	req.Identity = id.Identity(rawIdentity)
	req.Level = id.VerificationLevel(rawLevel)
	req.Commitment = id.Commitment(rawCommitment)
	req.Deposit = id.Wei(rawDeposit)
	req.Status = models.Status(rawStatus)
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}
	if dispatchedAt.Valid {
		req.DispatchedAt = &dispatchedAt.Time
	}
	return &req, nil
}
