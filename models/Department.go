package models

// Department groups employees under a single cost factor
type Department struct {
	Base
	Name   string  `gorm:"type:varchar(100);not null" json:"name" binding:"required"`
	Factor float64 `json:"factor"`

	Employees []*Employee `json:"employees,omitempty"`
	// EmployeesRefIDs replaces the full employee membership on update
	EmployeesRefIDs []uint `gorm:"-" json:"employees_refids,omitempty"`
}
