package models

import "time"

type ScrimmageInvite struct {
	ID          int        `json:"id"`
	Accepted    bool       `json:"accepted"`
	LastSent    time.Time  `json:"last_sent"`
	Responded   *time.Time `json:"responded"`
	AdvisorID   int        `json:"advisor_id"`
	ScrimmageID int        `json:"scrimmage_id"`
}
