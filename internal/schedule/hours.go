package schedule

import (
	"log/slog"
	"math"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

// Epsilon 是判定工时是否恰好达标的容差（小时），用于避免浮点噪声导致
// over/under 来回跳动
const Epsilon = 0.05

// BlockHours 计算单个时间段的时长（小时）。
// 入库前时间段都校验过，这里解析失败说明数据被绕过校验写入，记警告并按 0 处理
func BlockHours(block domain.TimeBlock) float64 {
	start, err := time.Parse(utils.ClockLayout, block.Start)
	if err != nil {
		slog.Warn("时间段开始时间格式错误", "start", block.Start)
		return 0
	}
	end, err := time.Parse(utils.ClockLayout, block.End)
	if err != nil {
		slog.Warn("时间段结束时间格式错误", "end", block.End)
		return 0
	}

	return end.Sub(start).Minutes() / 60
}

// DayHours 计算某一天已排班的总时长（小时），休息日为 0
func DayHours(ds *domain.DaySchedule) float64 {
	if ds == nil || !ds.IsWorking {
		return 0
	}

	total := 0.0
	for _, block := range ds.TimeBlocks {
		total += BlockHours(block)
	}
	return total
}

func statusOf(difference float64) domain.HoursStatus {
	switch {
	case math.Abs(difference) <= Epsilon:
		return domain.HoursStatusExact
	case difference > 0:
		return domain.HoursStatusOver
	default:
		return domain.HoursStatusUnder
	}
}

// WeekSummary 汇总一周 7 天的工时并和每周定额比较。
// 计算全程保持完整浮点精度，保留一位小数只在响应序列化前做。
func WeekSummary(weekStart string, days []*domain.DaySchedule, weeklyQuota float64) *domain.HoursSummary {
	totalBooked := 0.0
	for _, day := range days {
		totalBooked += DayHours(day)
	}

	difference := totalBooked - weeklyQuota

	return &domain.HoursSummary{
		WeekStart:     weekStart,
		WeeklyQuota:   weeklyQuota,
		TotalBooked:   totalBooked,
		ExpectedHours: weeklyQuota,
		Difference:    difference,
		Status:        statusOf(difference),
	}
}

// Round1 保留一位小数，仅用于展示层
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundWeekSummary 返回展示用的副本，各项数值保留一位小数
func RoundWeekSummary(s *domain.HoursSummary) *domain.HoursSummary {
	rounded := *s
	rounded.TotalBooked = Round1(s.TotalBooked)
	rounded.ExpectedHours = Round1(s.ExpectedHours)
	rounded.Difference = Round1(s.Difference)
	return &rounded
}
