package models

// DefaultMaxAdvisors применяется, если при создании скримa лимит не указан.
const DefaultMaxAdvisors = 5

type Scrimmage struct {
	ID                int    `json:"id"`
	Subject           string `json:"subject"`
	Schedule          string `json:"schedule"`
	ScrimmageType     string `json:"scrimmage_type"`
	ScrimmageComplete bool   `json:"scrimmage_complete"`
	MaxAdvisors       int    `json:"max_advisors"`

	// Связи many-to-many сериализуются списками идентификаторов,
	// а не вложенными объектами.
	Presenters []int `json:"presenters"`
	Advisors   []int `json:"advisors"`
}

func (s *Scrimmage) HasPresenter(userID int) bool {
	for _, id := range s.Presenters {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Scrimmage) HasAdvisor(userID int) bool {
	for _, id := range s.Advisors {
		if id == userID {
			return true
		}
	}
	return false
}
