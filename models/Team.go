package models

// Team is a cross-department grouping of employees
type Team struct {
	Base
	Name string `gorm:"type:varchar(100);not null" json:"name" binding:"required"`

	Employees []*Employee `gorm:"many2many:team_employees;" json:"employees,omitempty"`
	// EmployeesRefIDs replaces the full employee membership on update
	EmployeesRefIDs []uint `gorm:"-" json:"employees_refids,omitempty"`
}
