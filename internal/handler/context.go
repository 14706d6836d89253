package handler

type ContextKey string

var (
	RoleCtxKey            ContextKey = "role"
	SubCtxKey             ContextKey = "sub"
	MyInfoCtx             ContextKey = "myInfo"
	UserInfoCtx           ContextKey = "userInfo"
	ScheduleTemplateCtx   ContextKey = "scheduleTemplate"
	TemplateAssignmentCtx ContextKey = "templateAssignment"
	DayScheduleCtx        ContextKey = "daySchedule"
)
