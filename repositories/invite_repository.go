package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/ssched/scrimmage-api/models"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteConflict — для пары (scrimmage, advisor) приглашение уже есть.
	ErrInviteConflict         = errors.New("invite already exists for this advisor and scrimmage")
	ErrInviteReferenceInvalid = errors.New("invite references a missing user or scrimmage")
)

type InviteFilter struct {
	// ViewerID ограничивает выборку приглашениями, адресованными
	// пользователю либо относящимися к скримам, где он presenter.
	ViewerID    *int
	ScrimmageID *int
	AdvisorID   *int
}

type InviteRepository interface {
	Create(ctx context.Context, invite *models.ScrimmageInvite) error
	GetByID(ctx context.Context, id int) (*models.ScrimmageInvite, error)
	List(ctx context.Context, filter InviteFilter) ([]*models.ScrimmageInvite, error)
	Update(ctx context.Context, invite *models.ScrimmageInvite) error
	Delete(ctx context.Context, id int) error
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

const inviteColumns = `id, accepted, last_sent, responded, advisor_id, scrimmage_id`

func (r *postgresInviteRepository) Create(ctx context.Context, invite *models.ScrimmageInvite) error {
	query := `
		INSERT INTO scrimmage_invites (accepted, last_sent, responded, advisor_id, scrimmage_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		invite.Accepted,
		invite.LastSent,
		invite.Responded,
		invite.AdvisorID,
		invite.ScrimmageID,
	).Scan(&invite.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrInviteConflict
			case "23503": // foreign_key_violation
				return ErrInviteReferenceInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresInviteRepository) GetByID(ctx context.Context, id int) (*models.ScrimmageInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM scrimmage_invites WHERE id = $1`

	invite := &models.ScrimmageInvite{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invite.ID,
		&invite.Accepted,
		&invite.LastSent,
		&invite.Responded,
		&invite.AdvisorID,
		&invite.ScrimmageID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return invite, nil
}

func (r *postgresInviteRepository) List(ctx context.Context, filter InviteFilter) ([]*models.ScrimmageInvite, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ViewerID != nil {
		p := addArg(*filter.ViewerID)
		conditions = append(conditions, fmt.Sprintf(
			`(i.advisor_id = %[1]s
			  OR EXISTS (SELECT 1 FROM scrimmage_presenters sp WHERE sp.scrimmage_id = i.scrimmage_id AND sp.user_id = %[1]s))`, p))
	}
	if filter.ScrimmageID != nil {
		conditions = append(conditions, fmt.Sprintf(`i.scrimmage_id = %s`, addArg(*filter.ScrimmageID)))
	}
	if filter.AdvisorID != nil {
		conditions = append(conditions, fmt.Sprintf(`i.advisor_id = %s`, addArg(*filter.AdvisorID)))
	}

	query := `
		SELECT i.id, i.accepted, i.last_sent, i.responded, i.advisor_id, i.scrimmage_id
		FROM scrimmage_invites i`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]*models.ScrimmageInvite, 0)
	for rows.Next() {
		invite := &models.ScrimmageInvite{}
		scanErr := rows.Scan(
			&invite.ID,
			&invite.Accepted,
			&invite.LastSent,
			&invite.Responded,
			&invite.AdvisorID,
			&invite.ScrimmageID,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		invites = append(invites, invite)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *postgresInviteRepository) Update(ctx context.Context, invite *models.ScrimmageInvite) error {
	query := `
		UPDATE scrimmage_invites SET
			accepted = $1,
			last_sent = $2,
			responded = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		invite.Accepted,
		invite.LastSent,
		invite.Responded,
		invite.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}

func (r *postgresInviteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scrimmage_invites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}
