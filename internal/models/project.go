package models

import "time"

// Project groups tasks and belongs to exactly one owner.
type Project struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	OwnerID   string    `json:"ownerId" gorm:"column:owner_id;not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"<-:create"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}
