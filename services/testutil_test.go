package services

import (
	"context"
	"strings"
	"sync"

	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/repositories"
)

// Фейковые репозитории в памяти. Возвращают копии записей, чтобы мутации
// в сервисах (например, затирание хеша пароля) не протекали в "хранилище".

type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[int]models.User
	nextID int
}

func newFakeUserRepository(users ...models.User) *fakeUserRepository {
	repo := &fakeUserRepository{
		users:  make(map[int]models.User),
		nextID: 1,
	}
	for _, u := range users {
		repo.users[u.ID] = u
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (r *fakeUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepository) List(_ context.Context, roleFilter string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		if roleFilter != "" && !strings.Contains(user.Roles.String(), roleFilter) {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeScrimmageRepository struct {
	mu         sync.Mutex
	scrimmages map[int]models.Scrimmage
	nextID     int
}

func newFakeScrimmageRepository(scrimmages ...models.Scrimmage) *fakeScrimmageRepository {
	repo := &fakeScrimmageRepository{
		scrimmages: make(map[int]models.Scrimmage),
		nextID:     1,
	}
	for _, s := range scrimmages {
		repo.scrimmages[s.ID] = s
		if s.ID >= repo.nextID {
			repo.nextID = s.ID + 1
		}
	}
	return repo
}

func (r *fakeScrimmageRepository) Create(_ context.Context, scrimmage *models.Scrimmage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	scrimmage.ID = r.nextID
	r.nextID++
	r.scrimmages[scrimmage.ID] = copyScrimmage(*scrimmage)
	return nil
}

func (r *fakeScrimmageRepository) GetByID(_ context.Context, id int) (*models.Scrimmage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scrimmage, ok := r.scrimmages[id]
	if !ok {
		return nil, repositories.ErrScrimmageNotFound
	}
	copied := copyScrimmage(scrimmage)
	return &copied, nil
}

func (r *fakeScrimmageRepository) List(_ context.Context, filter repositories.ScrimmageFilter) ([]*models.Scrimmage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Scrimmage, 0, len(r.scrimmages))
	for _, scrimmage := range r.scrimmages {
		if filter.MemberID != nil && !scrimmage.HasPresenter(*filter.MemberID) && !scrimmage.HasAdvisor(*filter.MemberID) {
			continue
		}
		if filter.PresenterID != nil && !scrimmage.HasPresenter(*filter.PresenterID) {
			continue
		}
		if filter.AdvisorID != nil && !scrimmage.HasAdvisor(*filter.AdvisorID) {
			continue
		}
		if filter.Completed != nil && scrimmage.ScrimmageComplete != *filter.Completed {
			continue
		}
		copied := copyScrimmage(scrimmage)
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeScrimmageRepository) Update(_ context.Context, scrimmage *models.Scrimmage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scrimmages[scrimmage.ID]; !ok {
		return repositories.ErrScrimmageNotFound
	}
	r.scrimmages[scrimmage.ID] = copyScrimmage(*scrimmage)
	return nil
}

func (r *fakeScrimmageRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scrimmages[id]; !ok {
		return repositories.ErrScrimmageNotFound
	}
	delete(r.scrimmages, id)
	return nil
}

func copyScrimmage(s models.Scrimmage) models.Scrimmage {
	s.Presenters = append([]int(nil), s.Presenters...)
	s.Advisors = append([]int(nil), s.Advisors...)
	return s
}

type fakeInviteRepository struct {
	mu      sync.Mutex
	invites map[int]models.ScrimmageInvite
	nextID  int
}

func newFakeInviteRepository(invites ...models.ScrimmageInvite) *fakeInviteRepository {
	repo := &fakeInviteRepository{
		invites: make(map[int]models.ScrimmageInvite),
		nextID:  1,
	}
	for _, inv := range invites {
		repo.invites[inv.ID] = inv
		if inv.ID >= repo.nextID {
			repo.nextID = inv.ID + 1
		}
	}
	return repo
}

func (r *fakeInviteRepository) Create(_ context.Context, invite *models.ScrimmageInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invites {
		if existing.ScrimmageID == invite.ScrimmageID && existing.AdvisorID == invite.AdvisorID {
			return repositories.ErrInviteConflict
		}
	}
	invite.ID = r.nextID
	r.nextID++
	r.invites[invite.ID] = *invite
	return nil
}

func (r *fakeInviteRepository) GetByID(_ context.Context, id int) (*models.ScrimmageInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.invites[id]
	if !ok {
		return nil, repositories.ErrInviteNotFound
	}
	copied := invite
	return &copied, nil
}

func (r *fakeInviteRepository) List(_ context.Context, filter repositories.InviteFilter) ([]*models.ScrimmageInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ScrimmageInvite, 0, len(r.invites))
	for _, invite := range r.invites {
		if filter.ScrimmageID != nil && invite.ScrimmageID != *filter.ScrimmageID {
			continue
		}
		if filter.AdvisorID != nil && invite.AdvisorID != *filter.AdvisorID {
			continue
		}
		if filter.ViewerID != nil && invite.AdvisorID != *filter.ViewerID {
			continue
		}
		copied := invite
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeInviteRepository) Update(_ context.Context, invite *models.ScrimmageInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[invite.ID]; !ok {
		return repositories.ErrInviteNotFound
	}
	r.invites[invite.ID] = *invite
	return nil
}

func (r *fakeInviteRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[id]; !ok {
		return repositories.ErrInviteNotFound
	}
	delete(r.invites, id)
	return nil
}

// fakeNotifier запоминает отправленные события.
type fakeNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

type notifierEvent struct {
	ScrimmageID int
	Event       string
}

func (n *fakeNotifier) NotifyScrimmage(scrimmageID int, event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifierEvent{ScrimmageID: scrimmageID, Event: event})
}

func (n *fakeNotifier) eventNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, len(n.events))
	for i, e := range n.events {
		names[i] = e.Event
	}
	return names
}

func testUser(id int, username string, roles ...models.Role) models.User {
	return models.User{
		ID:       id,
		Username: username,
		Roles:    models.RoleSet(roles),
		IsActive: true,
	}
}
