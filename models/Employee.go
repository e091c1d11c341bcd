package models

import "time"

// Employee belongs to one department and any number of teams
type Employee struct {
	Base
	Number     string    `gorm:"type:varchar(50);unique;not null" json:"number" binding:"required"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name" binding:"required"`
	Retire     bool      `json:"retire"`
	RetireDate time.Time `json:"retire_date"`

	DepartmentID *uint       `json:"department_id"`
	Department   *Department `json:"department,omitempty"`

	Teams []*Team `gorm:"many2many:team_employees;" json:"teams,omitempty"`
	// TeamsRefIDs replaces the full team membership on update
	TeamsRefIDs []uint `gorm:"-" json:"teams_refids,omitempty"`
}
