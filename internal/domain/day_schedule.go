package domain

import "time"

type ScheduleSource string

const (
	SourceTemplate ScheduleSource = "template"
	SourceManual   ScheduleSource = "manual"
)

// DaySchedule 是某个用户某一天的具体排班，每个用户每个日期至多一行。
// 首次解析或首次手动编辑时才会落库；之后只会被覆盖，不会被硬删除。
type DaySchedule struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	Date       string         `json:"date"`
	IsWorking  bool           `json:"isWorking"`
	TimeBlocks []TimeBlock    `json:"timeBlocks"`
	Source     ScheduleSource `json:"source"`
	CreatedAt  time.Time      `json:"createdAt"`
	Version    int32          `json:"version"`
}
