package model

import "time"

// Subject 一门课程（materia）。ID 由创建者指定（课程代号），创建后不可变。
// swagger:model Subject
type Subject struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Program     string    `gorm:"size:255" json:"program"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Subject) TableName() string {
	return "subjects"
}
