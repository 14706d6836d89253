package domain

import "time"

type ResourceType string

const (
	ResourceDaySchedule ResourceType = "day_schedule"
	ResourceTemplate    ResourceType = "schedule_template"
)

// EditLock 是对某个资源的短期独占编辑权，同一资源同一时刻至多一个有效锁
type EditLock struct {
	ResourceType ResourceType `json:"resourceType"`
	ResourceID   int64        `json:"resourceId"`
	HolderID     int64        `json:"holderId"`
	HolderName   string       `json:"holderName"`
	AcquiredAt   time.Time    `json:"acquiredAt"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

// Conflict 表示提交者最后一次看到的值和当前存储值出现分歧的单个字段。
// Field 与实体的 JSON 字段名完全一致，客户端可以直接用它做 user-choice 决议。
type Conflict struct {
	Field         string `json:"field"`
	CurrentValue  any    `json:"currentValue"`
	IncomingValue any    `json:"incomingValue"`
}

// 冲突决议策略
type ResolveStrategy string

const (
	StrategyLastWriteWins ResolveStrategy = "last-write-wins"
	StrategyKeepCurrent   ResolveStrategy = "keep-current"
	StrategyUserChoice    ResolveStrategy = "user-choice"
	StrategyForce         ResolveStrategy = "force"
)
