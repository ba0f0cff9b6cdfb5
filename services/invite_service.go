package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/repositories"
)

type InviteService interface {
	// Create: приглашение advisor-а в скрим выдаёт presenter скримa или admin.
	Create(ctx context.Context, caller Caller, input CreateInviteInput) (*models.ScrimmageInvite, error)
	GetByID(ctx context.Context, id int) (*models.ScrimmageInvite, error)
	List(ctx context.Context, caller Caller, input ListInvitesInput) ([]*models.ScrimmageInvite, error)
	// Respond: отвечает только приглашённый advisor; принятие добавляет его
	// в список advisors скримa с учётом лимита max_advisors.
	Respond(ctx context.Context, caller Caller, id int, accepted bool) (*models.ScrimmageInvite, error)
	Delete(ctx context.Context, caller Caller, id int) error
}

type CreateInviteInput struct {
	ScrimmageID int `json:"scrimmage_id"`
	AdvisorID   int `json:"advisor_id"`
}

type ListInvitesInput struct {
	ScrimmageID *int
	AdvisorID   *int
}

type inviteService struct {
	inviteRepo    repositories.InviteRepository
	scrimmageRepo repositories.ScrimmageRepository
	userRepo      repositories.UserRepository
	notifier      ScrimmageNotifier
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	scrimmageRepo repositories.ScrimmageRepository,
	userRepo repositories.UserRepository,
	notifier ScrimmageNotifier,
) InviteService {
	return &inviteService{
		inviteRepo:    inviteRepo,
		scrimmageRepo: scrimmageRepo,
		userRepo:      userRepo,
		notifier:      notifier,
	}
}

func (s *inviteService) Create(ctx context.Context, caller Caller, input CreateInviteInput) (*models.ScrimmageInvite, error) {
	scrimmage, err := s.scrimmageRepo.GetByID(ctx, input.ScrimmageID)
	if err != nil {
		if errors.Is(err, repositories.ErrScrimmageNotFound) {
			return nil, ErrScrimmageNotFound
		}
		return nil, fmt.Errorf("failed to get scrimmage %d: %w", input.ScrimmageID, err)
	}

	if !CanManageScrimmage(caller, scrimmage) {
		return nil, ErrOperationNotAllowed
	}

	advisor, err := s.userRepo.GetByID(ctx, input.AdvisorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrAdvisorRoleRequired, input.AdvisorID)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", input.AdvisorID, err)
	}
	if !advisor.Roles.Has(models.RoleAdvisor) {
		return nil, fmt.Errorf("%w: user %d", ErrAdvisorRoleRequired, input.AdvisorID)
	}

	invite := &models.ScrimmageInvite{
		Accepted:    false,
		LastSent:    time.Now().UTC(),
		AdvisorID:   input.AdvisorID,
		ScrimmageID: input.ScrimmageID,
	}

	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		if errors.Is(err, repositories.ErrInviteConflict) {
			return nil, ErrInviteConflict
		}
		if errors.Is(err, repositories.ErrInviteReferenceInvalid) {
			return nil, ErrScrimmageNotFound
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyScrimmage(invite.ScrimmageID, "invite_created", invite)
	}
	return invite, nil
}

func (s *inviteService) GetByID(ctx context.Context, id int) (*models.ScrimmageInvite, error) {
	invite, err := s.inviteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite %d: %w", id, err)
	}
	return invite, nil
}

func (s *inviteService) List(ctx context.Context, caller Caller, input ListInvitesInput) ([]*models.ScrimmageInvite, error) {
	invites, err := s.inviteRepo.List(ctx, InviteListFilter(caller, input))
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

func (s *inviteService) Respond(ctx context.Context, caller Caller, id int, accepted bool) (*models.ScrimmageInvite, error) {
	invite, err := s.inviteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite %d: %w", id, err)
	}

	if !CanRespondToInvite(caller, invite) {
		return nil, ErrOperationNotAllowed
	}
	if invite.Responded != nil {
		return nil, ErrInviteAlreadyResponded
	}

	if accepted {
		scrimmage, err := s.scrimmageRepo.GetByID(ctx, invite.ScrimmageID)
		if err != nil {
			if errors.Is(err, repositories.ErrScrimmageNotFound) {
				return nil, ErrScrimmageNotFound
			}
			return nil, fmt.Errorf("failed to get scrimmage %d: %w", invite.ScrimmageID, err)
		}

		if !scrimmage.HasAdvisor(invite.AdvisorID) {
			if len(scrimmage.Advisors)+1 > scrimmage.MaxAdvisors {
				return nil, ErrAdvisorLimitExceeded
			}
			scrimmage.Advisors = append(scrimmage.Advisors, invite.AdvisorID)
			if err := s.scrimmageRepo.Update(ctx, scrimmage); err != nil {
				return nil, fmt.Errorf("failed to add advisor to scrimmage %d: %w", scrimmage.ID, err)
			}
		}
	}

	now := time.Now().UTC()
	invite.Accepted = accepted
	invite.Responded = &now

	if err := s.inviteRepo.Update(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to update invite %d: %w", id, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyScrimmage(invite.ScrimmageID, "invite_responded", invite)
	}
	return invite, nil
}

func (s *inviteService) Delete(ctx context.Context, caller Caller, id int) error {
	invite, err := s.inviteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to get invite %d: %w", id, err)
	}

	scrimmage, err := s.scrimmageRepo.GetByID(ctx, invite.ScrimmageID)
	if err != nil {
		if errors.Is(err, repositories.ErrScrimmageNotFound) {
			return ErrScrimmageNotFound
		}
		return fmt.Errorf("failed to get scrimmage %d: %w", invite.ScrimmageID, err)
	}

	if !CanManageScrimmage(caller, scrimmage) {
		return ErrOperationNotAllowed
	}

	if err := s.inviteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to delete invite %d: %w", id, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyScrimmage(invite.ScrimmageID, "invite_revoked", invite)
	}
	return nil
}
