package domain

import (
	"time"
)

type Role string

const (
	RoleEmployee      Role = "员工"
	RoleScheduler     Role = "排班管理员"
	RoleAdministrator Role = "系统管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	WeeklyQuota  float64   `json:"weeklyQuota"`
	DefaultStart *string   `json:"defaultStart"` // 旧版字段：没有任何模板分配时的每日默认上班时间（HH:MM）
	DefaultEnd   *string   `json:"defaultEnd"`   // 旧版字段：没有任何模板分配时的每日默认下班时间（HH:MM）
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
