package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id" example:"1"`
	Name        string    `gorm:"not null;size:50" json:"name" example:"Jane Doe"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email" example:"jane@example.com"`
	Password    string    `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role        string    `gorm:"not null;default:user;size:10" json:"role" example:"user"`
	SavedMovies []Movie   `gorm:"many2many:user_saved_movies;" json:"saved_movies,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
