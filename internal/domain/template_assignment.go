package domain

import "time"

// TemplateAssignment 将一个模板在一段日期内绑定到一个用户上。
// 日期均为 yyyy-MM-dd 字符串，EndDate 为 nil 表示开放式分配（无截止日期）。
// 同一用户允许多个分配在时间上重叠，解析时按优先级取其中一个。
type TemplateAssignment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	TemplateID int64     `json:"templateId"`
	StartDate  string    `json:"startDate"`
	EndDate    *string   `json:"endDate"`
	Priority   int32     `json:"priority"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}

// Covers 判断该分配是否覆盖给定日期（yyyy-MM-dd 的字典序与日期序一致）
func (a *TemplateAssignment) Covers(date string) bool {
	if date < a.StartDate {
		return false
	}
	if a.EndDate != nil && date > *a.EndDate {
		return false
	}
	return true
}
