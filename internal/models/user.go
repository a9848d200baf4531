package models

import "time"

// User represents a user in the system. Users are never removed; deleting one
// clears Active so that historical task and project references stay valid.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName  string    `json:"fullName" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"<-:create"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
