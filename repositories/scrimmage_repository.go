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

var ErrScrimmageNotFound = errors.New("scrimmage not found")

// ScrimmageFilter — условия выборки, комбинируются через AND.
type ScrimmageFilter struct {
	// MemberID ограничивает выборку скримами, где пользователь
	// является presenter ИЛИ advisor (область видимости по умолчанию).
	MemberID    *int
	PresenterID *int
	AdvisorID   *int
	Completed   *bool
}

type ScrimmageRepository interface {
	// Create вставляет скрим вместе со списками presenters/advisors
	// в одной транзакции. Заполняет поле ID.
	Create(ctx context.Context, scrimmage *models.Scrimmage) error
	GetByID(ctx context.Context, id int) (*models.Scrimmage, error)
	List(ctx context.Context, filter ScrimmageFilter) ([]*models.Scrimmage, error)
	// Update перезаписывает поля записи и полностью заменяет оба списка
	// участников — всё в одной транзакции, частичное применение невозможно.
	Update(ctx context.Context, scrimmage *models.Scrimmage) error
	Delete(ctx context.Context, id int) error
}

type postgresScrimmageRepository struct {
	db *sql.DB
}

func NewPostgresScrimmageRepository(db *sql.DB) ScrimmageRepository {
	return &postgresScrimmageRepository{db: db}
}

func (r *postgresScrimmageRepository) Create(ctx context.Context, scrimmage *models.Scrimmage) error {
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO scrimmages (subject, schedule, scrimmage_type, scrimmage_complete, max_advisors)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`

		err := tx.QueryRowContext(ctx, query,
			scrimmage.Subject,
			scrimmage.Schedule,
			scrimmage.ScrimmageType,
			scrimmage.ScrimmageComplete,
			scrimmage.MaxAdvisors,
		).Scan(&scrimmage.ID)
		if err != nil {
			return fmt.Errorf("failed to insert scrimmage: %w", err)
		}

		if err := insertMembers(ctx, tx, "scrimmage_presenters", scrimmage.ID, scrimmage.Presenters); err != nil {
			return err
		}
		return insertMembers(ctx, tx, "scrimmage_advisors", scrimmage.ID, scrimmage.Advisors)
	})
}

func (r *postgresScrimmageRepository) GetByID(ctx context.Context, id int) (*models.Scrimmage, error) {
	query := `
		SELECT id, subject, schedule, scrimmage_type, scrimmage_complete, max_advisors
		FROM scrimmages
		WHERE id = $1`

	scrimmage := &models.Scrimmage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&scrimmage.ID,
		&scrimmage.Subject,
		&scrimmage.Schedule,
		&scrimmage.ScrimmageType,
		&scrimmage.ScrimmageComplete,
		&scrimmage.MaxAdvisors,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScrimmageNotFound
		}
		return nil, err
	}

	if err := r.loadMembers(ctx, []*models.Scrimmage{scrimmage}); err != nil {
		return nil, err
	}
	return scrimmage, nil
}

func (r *postgresScrimmageRepository) List(ctx context.Context, filter ScrimmageFilter) ([]*models.Scrimmage, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.MemberID != nil {
		p := addArg(*filter.MemberID)
		conditions = append(conditions, fmt.Sprintf(
			`(EXISTS (SELECT 1 FROM scrimmage_presenters sp WHERE sp.scrimmage_id = s.id AND sp.user_id = %[1]s)
			  OR EXISTS (SELECT 1 FROM scrimmage_advisors sa WHERE sa.scrimmage_id = s.id AND sa.user_id = %[1]s))`, p))
	}
	if filter.PresenterID != nil {
		p := addArg(*filter.PresenterID)
		conditions = append(conditions,
			fmt.Sprintf(`EXISTS (SELECT 1 FROM scrimmage_presenters sp WHERE sp.scrimmage_id = s.id AND sp.user_id = %s)`, p))
	}
	if filter.AdvisorID != nil {
		p := addArg(*filter.AdvisorID)
		conditions = append(conditions,
			fmt.Sprintf(`EXISTS (SELECT 1 FROM scrimmage_advisors sa WHERE sa.scrimmage_id = s.id AND sa.user_id = %s)`, p))
	}
	if filter.Completed != nil {
		p := addArg(*filter.Completed)
		conditions = append(conditions, fmt.Sprintf(`s.scrimmage_complete = %s`, p))
	}

	query := `
		SELECT s.id, s.subject, s.schedule, s.scrimmage_type, s.scrimmage_complete, s.max_advisors
		FROM scrimmages s`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scrimmages := make([]*models.Scrimmage, 0)
	for rows.Next() {
		scrimmage := &models.Scrimmage{}
		scanErr := rows.Scan(
			&scrimmage.ID,
			&scrimmage.Subject,
			&scrimmage.Schedule,
			&scrimmage.ScrimmageType,
			&scrimmage.ScrimmageComplete,
			&scrimmage.MaxAdvisors,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		scrimmages = append(scrimmages, scrimmage)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadMembers(ctx, scrimmages); err != nil {
		return nil, err
	}
	return scrimmages, nil
}

func (r *postgresScrimmageRepository) Update(ctx context.Context, scrimmage *models.Scrimmage) error {
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE scrimmages SET
				subject = $1,
				schedule = $2,
				scrimmage_type = $3,
				scrimmage_complete = $4,
				max_advisors = $5
			WHERE id = $6`

		result, err := tx.ExecContext(ctx, query,
			scrimmage.Subject,
			scrimmage.Schedule,
			scrimmage.ScrimmageType,
			scrimmage.ScrimmageComplete,
			scrimmage.MaxAdvisors,
			scrimmage.ID,
		)
		if err != nil {
			return err
		}
		if err := checkAffectedRows(result, ErrScrimmageNotFound); err != nil {
			return err
		}

		if err := replaceMembers(ctx, tx, "scrimmage_presenters", scrimmage.ID, scrimmage.Presenters); err != nil {
			return err
		}
		return replaceMembers(ctx, tx, "scrimmage_advisors", scrimmage.ID, scrimmage.Advisors)
	})
}

func (r *postgresScrimmageRepository) Delete(ctx context.Context, id int) error {
	// Строки связей удаляются каскадно (FK ON DELETE CASCADE).
	result, err := r.db.ExecContext(ctx, `DELETE FROM scrimmages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrScrimmageNotFound)
}

// loadMembers дозагружает списки presenters/advisors для набора скримов
// двумя запросами вместо n+1.
func (r *postgresScrimmageRepository) loadMembers(ctx context.Context, scrimmages []*models.Scrimmage) error {
	if len(scrimmages) == 0 {
		return nil
	}

	byID := make(map[int]*models.Scrimmage, len(scrimmages))
	ids := make([]int, 0, len(scrimmages))
	for _, s := range scrimmages {
		s.Presenters = make([]int, 0)
		s.Advisors = make([]int, 0)
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	loadRelation := func(table string, assign func(s *models.Scrimmage, userID int)) error {
		query := fmt.Sprintf(
			`SELECT scrimmage_id, user_id FROM %s WHERE scrimmage_id = ANY($1) ORDER BY user_id ASC`, table)
		rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var scrimmageID, userID int
			if err := rows.Scan(&scrimmageID, &userID); err != nil {
				return err
			}
			if s, ok := byID[scrimmageID]; ok {
				assign(s, userID)
			}
		}
		return rows.Err()
	}

	if err := loadRelation("scrimmage_presenters", func(s *models.Scrimmage, userID int) {
		s.Presenters = append(s.Presenters, userID)
	}); err != nil {
		return err
	}
	return loadRelation("scrimmage_advisors", func(s *models.Scrimmage, userID int) {
		s.Advisors = append(s.Advisors, userID)
	})
}

func insertMembers(ctx context.Context, tx *sql.Tx, table string, scrimmageID int, userIDs []int) error {
	for _, userID := range userIDs {
		query := fmt.Sprintf(`INSERT INTO %s (scrimmage_id, user_id) VALUES ($1, $2)`, table)
		if _, err := tx.ExecContext(ctx, query, scrimmageID, userID); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

func replaceMembers(ctx context.Context, tx *sql.Tx, table string, scrimmageID int, userIDs []int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE scrimmage_id = $1`, table)
	if _, err := tx.ExecContext(ctx, query, scrimmageID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return insertMembers(ctx, tx, table, scrimmageID, userIDs)
}
