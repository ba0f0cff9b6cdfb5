package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RolePresenter Role = "presenter"
	RoleAdvisor   Role = "advisor"
)

// RoleSet — набор ролей пользователя. В базе и в JSON представлен строкой
// тегов через запятую ("admin,presenter"), порядок не важен.
type RoleSet []Role

func ParseRoleSet(s string) RoleSet {
	parts := strings.Split(s, ",")
	set := make(RoleSet, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		set = append(set, Role(p))
	}
	return set
}

func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

func (rs RoleSet) IsAdmin() bool {
	return rs.Has(RoleAdmin)
}

func (rs RoleSet) String() string {
	tags := make([]string, len(rs))
	for i, r := range rs {
		tags[i] = string(r)
	}
	return strings.Join(tags, ",")
}

func (rs RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.String())
}

func (rs *RoleSet) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*rs = ParseRoleSet(s)
	return nil
}

func (rs RoleSet) Value() (driver.Value, error) {
	return rs.String(), nil
}

func (rs *RoleSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*rs = ParseRoleSet(v)
	case []byte:
		*rs = ParseRoleSet(string(v))
	case nil:
		*rs = nil
	default:
		return fmt.Errorf("cannot scan %T into RoleSet", src)
	}
	return nil
}
