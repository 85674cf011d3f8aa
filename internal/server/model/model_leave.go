package model

// Leave-policy rows live outside this service's write path; they matter here
// because leave caches are computed against them and must be invalidated
// with role and policy changes.

type LeaveType struct {
	BaseModel
	LeaveTypeId    string `gorm:"column:leave_type_id" json:"leaveTypeId"`
	OrganizationId string `gorm:"column:organization_id" json:"organizationId"`
	Name           string `gorm:"column:name" json:"name"`
	DaysPerYear    int    `gorm:"column:days_per_year" json:"daysPerYear"`
	RequiresProof  bool   `gorm:"column:requires_proof" json:"requiresProof"`
}

func (LeaveType) TableName() string {
	return "t_leave_type"
}

type LeaveBalance struct {
	BaseModel
	UserId         string  `gorm:"column:user_id" json:"userId"`
	OrganizationId string  `gorm:"column:organization_id" json:"organizationId"`
	LeaveTypeId    string  `gorm:"column:leave_type_id" json:"leaveTypeId"`
	Year           int     `gorm:"column:year" json:"year"`
	Remaining      float64 `gorm:"column:remaining" json:"remaining"`
}

func (LeaveBalance) TableName() string {
	return "t_leave_balance"
}
