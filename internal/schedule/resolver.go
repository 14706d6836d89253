package schedule

import (
	"log/slog"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

// SelectAssignment 从用户的所有模板分配中选出管辖给定日期的那一个。
// 规则：只考虑启用中且日期范围覆盖 date 的分配；优先级高者胜出；
// 优先级相同时开始日期晚者胜出（更具体、更近期的安排优先）；
// 仍然相同时取最近创建（ID 最大）的那个。没有任何分配覆盖时返回 nil。
func SelectAssignment(assignments []*domain.TemplateAssignment, date string) *domain.TemplateAssignment {
	candidates := make([]*domain.TemplateAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.IsActive && a.Covers(date) {
			candidates = append(candidates, a)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		if candidates[i].StartDate != candidates[j].StartDate {
			return candidates[i].StartDate > candidates[j].StartDate
		}
		return candidates[i].ID > candidates[j].ID
	})

	return candidates[0]
}

// MaterializeDay 按模板把某一天的排班具体化。
// 模板数据缺失或非法时不会让整周的解析失败，只记一条警告并退化成休息日。
func MaterializeDay(userID int64, date string, template *domain.ScheduleTemplate) *domain.DaySchedule {
	ds := &domain.DaySchedule{
		UserID:     userID,
		Date:       date,
		IsWorking:  false,
		TimeBlocks: []domain.TimeBlock{},
		Source:     domain.SourceTemplate,
	}

	day, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		slog.Warn("日期格式错误，按休息日处理", "userID", userID, "date", date)
		return ds
	}

	if template == nil || template.Pattern == nil {
		slog.Warn("模板数据缺失，按休息日处理", "userID", userID, "date", date)
		return ds
	}

	pattern, exists := template.Pattern[int32(day.Weekday())]
	if !exists {
		slog.Warn("模板缺少该星期几的安排，按休息日处理", "userID", userID, "date", date, "templateID", template.ID, "weekday", int32(day.Weekday()))
		return ds
	}

	if !pattern.IsWorking {
		return ds
	}

	if err := utils.ValidateTimeBlocks(pattern.TimeBlocks); err != nil {
		slog.Warn("模板中的时间段非法，按休息日处理", "userID", userID, "date", date, "templateID", template.ID, "error", err)
		return ds
	}

	ds.IsWorking = true
	// 深拷贝，防止后续对 DaySchedule 的修改影响模板
	ds.TimeBlocks = make([]domain.TimeBlock, len(pattern.TimeBlocks))
	copy(ds.TimeBlocks, pattern.TimeBlocks)

	return ds
}

// legacyDay 按旧版的每用户默认上下班时间生成排班，只在工作日（周一到周五）生效
func legacyDay(user *domain.User, date string) *domain.DaySchedule {
	ds := &domain.DaySchedule{
		UserID:     user.ID,
		Date:       date,
		IsWorking:  false,
		TimeBlocks: []domain.TimeBlock{},
		Source:     domain.SourceTemplate,
	}

	if user.DefaultStart == nil || user.DefaultEnd == nil {
		return ds
	}

	day, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return ds
	}
	if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		return ds
	}

	block := domain.TimeBlock{Start: *user.DefaultStart, End: *user.DefaultEnd}
	if err := utils.ValidateTimeBlocks([]domain.TimeBlock{block}); err != nil {
		slog.Warn("旧版默认上下班时间非法，按休息日处理", "userID", user.ID, "error", err)
		return ds
	}

	ds.IsWorking = true
	ds.TimeBlocks = []domain.TimeBlock{block}

	return ds
}

// ResolveDay 解析某个用户某一天的排班。
// 已存在手动编辑过的记录时直接返回它（手动编辑优先于模板），除非 resync 要求
// 丢弃手动标记重新按模板解析。对固定输入该函数是纯函数，结果可重复。
func ResolveDay(user *domain.User, date string, existing *domain.DaySchedule, assignments []*domain.TemplateAssignment, templates map[int64]*domain.ScheduleTemplate, resync bool) *domain.DaySchedule {
	if existing != nil && existing.Source == domain.SourceManual && !resync {
		return existing
	}

	assignment := SelectAssignment(assignments, date)
	if assignment == nil {
		return legacyDay(user, date)
	}

	return MaterializeDay(user.ID, date, templates[assignment.TemplateID])
}
