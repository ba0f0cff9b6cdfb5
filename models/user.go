package models

type User struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	FirstName    string  `json:"firstname"`
	LastName     string  `json:"lastname"`
	Roles        RoleSet `json:"roles"`
	IsActive     bool    `json:"is_active"`

	AvatarKey *string `json:"-"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
