package model

type User struct {
	BaseModel
	UserId         string `gorm:"column:user_id" json:"userId"`
	Email          string `gorm:"column:email" json:"email"`
	FirstName      string `gorm:"column:first_name" json:"firstName"`
	LastName       string `gorm:"column:last_name" json:"lastName"`
	Password       string `gorm:"column:password" json:"-"`
	OrganizationId string `gorm:"column:organization_id" json:"organizationId"`
	Role           string `gorm:"column:role" json:"role"`
	IsMaster       int    `gorm:"column:is_master;default:0" json:"isMaster"` // 0: normal user, 1: master operator
}

func (User) TableName() string {
	return "t_user"
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResp struct {
	UserInfo UserInfo          `json:"userInfo"`
	Token    map[string]string `json:"token"`
}

type UserInfo struct {
	UserId         string `json:"userId"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	OrganizationId string `json:"organizationId"`
	Role           string `json:"role"`
}

func (u *User) Info() *UserInfo {
	return &UserInfo{
		UserId:         u.UserId,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		OrganizationId: u.OrganizationId,
		Role:           u.Role,
	}
}
