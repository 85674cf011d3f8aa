package model

type Organization struct {
	BaseModel
	OrganizationId string `gorm:"column:organization_id" json:"organizationId"`
	Name           string `gorm:"column:name" json:"name"`
	Domain         string `gorm:"column:domain" json:"domain"`
	// AdminCount is a denormalized, eventually consistent copy of the live
	// count of admin-role users. It may lag transiently; every role mutation
	// path reconciles it.
	AdminCount int    `gorm:"column:admin_count;default:0" json:"adminCount"`
	Settings   string `gorm:"column:settings" json:"settings"` // JSON blob
}

func (Organization) TableName() string {
	return "t_organization"
}

// OrganizationSettings is the decoded shape of the settings blob, cached
// under the org settings key.
type OrganizationSettings struct {
	Timezone      string `json:"timezone"`
	WorkWeekStart string `json:"workWeekStart"`
	LeaveYearFrom string `json:"leaveYearFrom"`
}
