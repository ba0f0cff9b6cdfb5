package services

import (
	"strings"

	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/repositories"
)

// Caller — личность вызывающего, восстановленная из проверенного токена.
type Caller struct {
	ID    int
	Roles models.RoleSet
}

// Чистые решающие функции политики доступа. Никаких обращений к хранилищу:
// на вход — вызывающий и целевая запись, на выход — разрешение.

func CanManageUser(caller Caller, targetUserID int) bool {
	return caller.ID == targetUserID || caller.Roles.IsAdmin()
}

func CanManageScrimmage(caller Caller, scrimmage *models.Scrimmage) bool {
	return scrimmage.HasPresenter(caller.ID) || caller.Roles.IsAdmin()
}

func CanRespondToInvite(caller Caller, invite *models.ScrimmageInvite) bool {
	return invite.AdvisorID == caller.ID
}

// ScrimmageListFilter переводит параметры листинга в условия выборки с учётом
// ролей вызывающего. Область видимости по умолчанию — скримы, где вызывающий
// presenter или advisor; all=true снимает ограничение только для admin, для
// остальных запрос молча сводится к области по умолчанию (без ошибки).
// Дополнительные фильтры комбинируются через AND.
func ScrimmageListFilter(caller Caller, input ListScrimmagesInput) repositories.ScrimmageFilter {
	filter := repositories.ScrimmageFilter{Completed: input.Completed}

	if !input.All || !caller.Roles.IsAdmin() {
		memberID := caller.ID
		filter.MemberID = &memberID
	}

	// Фильтр role сверяется по подстроке, как в исходном API:
	// role=advisor сужает до скримов, где вызывающий advisor,
	// role=presenter — где вызывающий presenter.
	if strings.Contains(input.Role, string(models.RoleAdvisor)) {
		advisorID := caller.ID
		filter.AdvisorID = &advisorID
	}
	if strings.Contains(input.Role, string(models.RolePresenter)) {
		presenterID := caller.ID
		filter.PresenterID = &presenterID
	}

	return filter
}

// InviteListFilter: admin видит всё, остальные — приглашения, адресованные
// им самим либо относящиеся к скримам, где они presenter.
func InviteListFilter(caller Caller, input ListInvitesInput) repositories.InviteFilter {
	filter := repositories.InviteFilter{
		ScrimmageID: input.ScrimmageID,
		AdvisorID:   input.AdvisorID,
	}
	if !caller.Roles.IsAdmin() {
		viewerID := caller.ID
		filter.ViewerID = &viewerID
	}
	return filter
}
