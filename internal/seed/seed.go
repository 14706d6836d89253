package seed

import (
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

// 标准工作日安排：周一到周五，上午下午各一段
var weekdayPattern = map[int32]domain.DayPattern{
	0: {IsWorking: false},
	1: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:30", End: "17:30"}}},
	2: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:30", End: "17:30"}}},
	3: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:30", End: "17:30"}}},
	4: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:30", End: "17:30"}}},
	5: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:30", End: "17:30"}}},
	6: {IsWorking: false},
}

// 2026 年的法定节假日（不含调休补班日）
var statutoryHolidays = map[string]string{
	"2026-01-01": "元旦",
	"2026-02-16": "除夕",
	"2026-02-17": "春节",
	"2026-02-18": "春节",
	"2026-02-19": "春节",
	"2026-02-20": "春节",
	"2026-04-05": "清明节",
	"2026-05-01": "劳动节",
	"2026-06-19": "端午节",
	"2026-09-25": "中秋节",
	"2026-10-01": "国庆节",
	"2026-10-02": "国庆节",
	"2026-10-03": "国庆节",
}

// SeedBaseline 插入一个默认的标准工作日模板、全年法定节假日，
// 并把该模板以优先级 0 分配给当前所有用户，起始日期为下一个周一。
func SeedBaseline(r *repository.Repository) {
	template := &domain.ScheduleTemplate{
		Name:        "标准工作日",
		Description: "周一至周五 09:00-12:00、13:30-17:30",
		IsGlobal:    true,
		IsDefault:   true,
		Pattern:     weekdayPattern,
	}
	if err := r.CreateScheduleTemplate(template); err != nil {
		slog.Error("无法插入默认模板", slog.String("error", err.Error()))
		return
	}
	slog.Info("插入默认模板成功", slog.Int64("template_id", template.ID))

	cnt := 0
	for date, name := range statutoryHolidays {
		if err := r.CreateHoliday(&domain.Holiday{Date: date, Name: name}); err != nil {
			slog.Error("无法插入节假日", slog.String("date", date), slog.String("error", err.Error()))
			continue
		}
		cnt++
	}
	slog.Info("插入节假日成功", slog.Int("count", cnt))

	users, err := r.GetAllUsers()
	if err != nil {
		slog.Error("无法获取所有用户", slog.String("error", err.Error()))
		return
	}

	startDate := nextMonday(time.Now()).Format(utils.DateLayout)
	cnt = 0
	for _, user := range users {
		ta := &domain.TemplateAssignment{
			UserID:     user.ID,
			TemplateID: template.ID,
			StartDate:  startDate,
			Priority:   0,
			IsActive:   true,
		}
		if err := r.CreateTemplateAssignment(ta); err != nil {
			slog.Error("无法插入模板分配", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
			continue
		}
		cnt++
	}
	slog.Info("插入模板分配成功", slog.Int("count", cnt), slog.String("start_date", startDate))
}

func nextMonday(t time.Time) time.Time {
	offset := (8 - int(t.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return t.AddDate(0, 0, offset)
}
