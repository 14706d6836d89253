package domain

import (
	"time"
)

// TimeBlock 表示一天内的一个连续工作时间段，时间均为 24 小时制的 HH:MM 字符串
type TimeBlock struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayPattern 表示模板中某个星期几的工作安排
type DayPattern struct {
	IsWorking  bool        `json:"isWorking"`
	TimeBlocks []TimeBlock `json:"timeBlocks"`
}

// ScheduleTemplate 的 Pattern 以星期几（0 = 周日，6 = 周六）为键
type ScheduleTemplate struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsGlobal    bool                 `json:"isGlobal"`
	IsDefault   bool                 `json:"isDefault"`
	Pattern     map[int32]DayPattern `json:"pattern"`
	CreatedAt   time.Time            `json:"createdAt"`
	Version     int32                `json:"-"`
}
