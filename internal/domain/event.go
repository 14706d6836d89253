package domain

// ScheduleEvent 是发布到消息队列的排班变更事件，由外部协作方（日历界面等）消费
type ScheduleEvent struct {
	Type         string       `json:"type"`
	ResourceType ResourceType `json:"resourceType"`
	ResourceID   int64        `json:"resourceId"`
	ActorID      int64        `json:"actorId"`
	Data         any          `json:"data"`
}

const (
	EventDayScheduleUpdated = "day_schedule_updated"
	EventTemplateUpdated    = "schedule_template_updated"
	EventLockOverridden     = "edit_lock_overridden"
)
