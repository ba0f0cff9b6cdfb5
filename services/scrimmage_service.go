package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/repositories"
	"golang.org/x/sync/errgroup"
)

// ScrimmageNotifier рассылает событие подписчикам комнаты скримa.
// Реализуется events.Hub; nil отключает уведомления.
type ScrimmageNotifier interface {
	NotifyScrimmage(scrimmageID int, event string, payload interface{})
}

type ScrimmageService interface {
	List(ctx context.Context, caller Caller, input ListScrimmagesInput) ([]*models.Scrimmage, error)
	// Create доступен любому аутентифицированному пользователю; создатель
	// автоматически в presenters не попадает.
	Create(ctx context.Context, caller Caller, input CreateScrimmageInput) (*models.Scrimmage, error)
	GetByID(ctx context.Context, id int) (*models.Scrimmage, error)
	Update(ctx context.Context, caller Caller, id int, input UpdateScrimmageInput) (*models.Scrimmage, error)
	Delete(ctx context.Context, caller Caller, id int) error
}

type ListScrimmagesInput struct {
	Role      string
	All       bool
	Completed *bool
}

type CreateScrimmageInput struct {
	Subject       string `json:"subject"`
	Schedule      string `json:"schedule"`
	ScrimmageType string `json:"scrimmage_type"`
	Presenters    []int  `json:"presenters"`
	MaxAdvisors   *int   `json:"max_advisors"`
}

// UpdateScrimmageInput — патч с явной семантикой присутствия: nil-поле не
// трогается, не-nil перезаписывает значение, в том числе false и 0.
type UpdateScrimmageInput struct {
	Subject           *string `json:"subject"`
	Schedule          *string `json:"schedule"`
	ScrimmageType     *string `json:"scrimmage_type"`
	ScrimmageComplete *bool   `json:"scrimmage_complete"`
	MaxAdvisors       *int    `json:"max_advisors"`
	Presenters        *[]int  `json:"presenters"`
	Advisors          *[]int  `json:"advisors"`
}

type scrimmageService struct {
	scrimmageRepo repositories.ScrimmageRepository
	userRepo      repositories.UserRepository
	notifier      ScrimmageNotifier
}

func NewScrimmageService(
	scrimmageRepo repositories.ScrimmageRepository,
	userRepo repositories.UserRepository,
	notifier ScrimmageNotifier,
) ScrimmageService {
	return &scrimmageService{
		scrimmageRepo: scrimmageRepo,
		userRepo:      userRepo,
		notifier:      notifier,
	}
}

func (s *scrimmageService) List(ctx context.Context, caller Caller, input ListScrimmagesInput) ([]*models.Scrimmage, error) {
	scrimmages, err := s.scrimmageRepo.List(ctx, ScrimmageListFilter(caller, input))
	if err != nil {
		return nil, fmt.Errorf("failed to list scrimmages: %w", err)
	}
	return scrimmages, nil
}

func (s *scrimmageService) Create(ctx context.Context, caller Caller, input CreateScrimmageInput) (*models.Scrimmage, error) {
	maxAdvisors := models.DefaultMaxAdvisors
	if input.MaxAdvisors != nil {
		if *input.MaxAdvisors <= 0 {
			return nil, ErrMaxAdvisorsInvalid
		}
		maxAdvisors = *input.MaxAdvisors
	}

	presenters := dedupeIDs(input.Presenters)
	if err := s.validateMemberRoles(ctx, presenters, models.RolePresenter, ErrPresenterRoleRequired); err != nil {
		return nil, err
	}

	scrimmage := &models.Scrimmage{
		Subject:           input.Subject,
		Schedule:          input.Schedule,
		ScrimmageType:     input.ScrimmageType,
		ScrimmageComplete: false,
		MaxAdvisors:       maxAdvisors,
		Presenters:        presenters,
		Advisors:          make([]int, 0),
	}

	if err := s.scrimmageRepo.Create(ctx, scrimmage); err != nil {
		return nil, fmt.Errorf("failed to create scrimmage: %w", err)
	}
	return scrimmage, nil
}

func (s *scrimmageService) GetByID(ctx context.Context, id int) (*models.Scrimmage, error) {
	scrimmage, err := s.scrimmageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrScrimmageNotFound) {
			return nil, ErrScrimmageNotFound
		}
		return nil, fmt.Errorf("failed to get scrimmage %d: %w", id, err)
	}
	return scrimmage, nil
}

func (s *scrimmageService) Update(ctx context.Context, caller Caller, id int, input UpdateScrimmageInput) (*models.Scrimmage, error) {
	scrimmage, err := s.scrimmageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrScrimmageNotFound) {
			return nil, ErrScrimmageNotFound
		}
		return nil, fmt.Errorf("failed to get scrimmage %d: %w", id, err)
	}

	// Авторизация раньше валидации: чужому вызывающему не сообщаем,
	// валиден ли его патч.
	if !CanManageScrimmage(caller, scrimmage) {
		return nil, ErrOperationNotAllowed
	}

	if input.MaxAdvisors != nil && *input.MaxAdvisors <= 0 {
		return nil, ErrMaxAdvisorsInvalid
	}

	presenters := scrimmage.Presenters
	if input.Presenters != nil {
		presenters = dedupeIDs(*input.Presenters)
		if err := s.validateMemberRoles(ctx, presenters, models.RolePresenter, ErrPresenterRoleRequired); err != nil {
			return nil, err
		}
	}

	advisors := scrimmage.Advisors
	if input.Advisors != nil {
		advisors = dedupeIDs(*input.Advisors)
		if err := s.validateMemberRoles(ctx, advisors, models.RoleAdvisor, ErrAdvisorRoleRequired); err != nil {
			return nil, err
		}
	}

	maxAdvisors := scrimmage.MaxAdvisors
	if input.MaxAdvisors != nil {
		maxAdvisors = *input.MaxAdvisors
	}
	if len(advisors) > maxAdvisors {
		return nil, ErrAdvisorLimitExceeded
	}

	if input.Subject != nil {
		scrimmage.Subject = *input.Subject
	}
	if input.Schedule != nil {
		scrimmage.Schedule = *input.Schedule
	}
	if input.ScrimmageType != nil {
		scrimmage.ScrimmageType = *input.ScrimmageType
	}
	if input.ScrimmageComplete != nil {
		// Флаг завершённости без терминальной блокировки:
		// завершённый скрим можно открыть заново тем же патчем.
		scrimmage.ScrimmageComplete = *input.ScrimmageComplete
	}
	scrimmage.MaxAdvisors = maxAdvisors
	scrimmage.Presenters = presenters
	scrimmage.Advisors = advisors

	if err := s.scrimmageRepo.Update(ctx, scrimmage); err != nil {
		if errors.Is(err, repositories.ErrScrimmageNotFound) {
			return nil, ErrScrimmageNotFound
		}
		return nil, fmt.Errorf("failed to update scrimmage %d: %w", id, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyScrimmage(scrimmage.ID, "scrimmage_updated", scrimmage)
	}
	return scrimmage, nil
}

func (s *scrimmageService) Delete(ctx context.Context, caller Caller, id int) error {
	scrimmage, err := s.scrimmageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrScrimmageNotFound) {
			return ErrScrimmageNotFound
		}
		return fmt.Errorf("failed to get scrimmage %d: %w", id, err)
	}

	if !CanManageScrimmage(caller, scrimmage) {
		return ErrOperationNotAllowed
	}

	if err := s.scrimmageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrScrimmageNotFound) {
			return ErrScrimmageNotFound
		}
		return fmt.Errorf("failed to delete scrimmage %d: %w", id, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyScrimmage(id, "scrimmage_deleted", nil)
	}
	return nil
}

// validateMemberRoles параллельно проверяет, что каждый id существует и несёт
// требуемую роль. Первая неудача отменяет всю операцию — никаких частично
// применённых списков.
func (s *scrimmageService) validateMemberRoles(ctx context.Context, userIDs []int, role models.Role, roleErr error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			user, err := s.userRepo.GetByID(gctx, userID)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return fmt.Errorf("%w: user %d", roleErr, userID)
				}
				return fmt.Errorf("failed to get user %d: %w", userID, err)
			}
			if !user.Roles.Has(role) {
				return fmt.Errorf("%w: user %d", roleErr, userID)
			}
			return nil
		})
	}
	return g.Wait()
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
