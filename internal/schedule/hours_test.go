package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/schedule"
)

func TestBlockHours(t *testing.T) {
	require.InDelta(t, 4.0, schedule.BlockHours(domain.TimeBlock{Start: "08:00", End: "12:00"}), 1e-9)
	require.InDelta(t, 0.5, schedule.BlockHours(domain.TimeBlock{Start: "12:00", End: "12:30"}), 1e-9)
	// 格式非法的时间段按 0 处理，不让整个汇总失败
	require.Zero(t, schedule.BlockHours(domain.TimeBlock{Start: "abc", End: "12:00"}))
}

func TestDayHours(t *testing.T) {
	day := &domain.DaySchedule{
		IsWorking: true,
		TimeBlocks: []domain.TimeBlock{
			{Start: "08:00", End: "12:00"},
			{Start: "12:30", End: "16:30"},
		},
	}
	require.InDelta(t, 8.0, schedule.DayHours(day), 1e-9)

	// 休息日恒为 0，即使记录里残留着时间段
	day.IsWorking = false
	require.Zero(t, schedule.DayHours(day))
	require.Zero(t, schedule.DayHours(nil))
}

func weekOf(dailyHours []float64) []*domain.DaySchedule {
	days := make([]*domain.DaySchedule, len(dailyHours))
	for i, hours := range dailyHours {
		if hours == 0 {
			days[i] = &domain.DaySchedule{IsWorking: false}
			continue
		}
		minutes := int(hours * 60)
		end := domain.TimeBlock{
			Start: "08:00",
			End:   clockAfter(8*60, minutes),
		}
		days[i] = &domain.DaySchedule{IsWorking: true, TimeBlocks: []domain.TimeBlock{end}}
	}
	return days
}

func clockAfter(startMinutes, durationMinutes int) string {
	total := startMinutes + durationMinutes
	return twoDigits(total/60) + ":" + twoDigits(total%60)
}

func twoDigits(v int) string {
	return string(rune('0'+v/10)) + string(rune('0'+v%10))
}

func TestWeekSummary_Over(t *testing.T) {
	// 定额 20，实排 22
	days := weekOf([]float64{8, 8, 6, 0, 0, 0, 0})
	summary := schedule.WeekSummary("2024-03-11", days, 20)

	require.Equal(t, "2024-03-11", summary.WeekStart)
	require.InDelta(t, 22.0, summary.TotalBooked, 1e-9)
	require.InDelta(t, 2.0, summary.Difference, 1e-9)
	require.Equal(t, domain.HoursStatusOver, summary.Status)
}

func TestWeekSummary_Under(t *testing.T) {
	days := weekOf([]float64{8, 8, 0, 0, 0, 0, 0})
	summary := schedule.WeekSummary("2024-03-11", days, 40)

	require.InDelta(t, -24.0, summary.Difference, 1e-9)
	require.Equal(t, domain.HoursStatusUnder, summary.Status)
}

func TestWeekSummary_ExactWithinTolerance(t *testing.T) {
	// 39.99 和 40 的差落在容差内，不应报 under
	days := weekOf([]float64{8, 8, 8, 8, 7.95, 0, 0})
	summary := schedule.WeekSummary("2024-03-11", days, 40)

	require.Equal(t, domain.HoursStatusExact, summary.Status)
}

func TestRoundWeekSummary_DoesNotMutateOriginal(t *testing.T) {
	summary := &domain.HoursSummary{
		TotalBooked:   21.6666666,
		ExpectedHours: 20,
		Difference:    1.6666666,
	}
	rounded := schedule.RoundWeekSummary(summary)

	require.InDelta(t, 21.7, rounded.TotalBooked, 1e-9)
	require.InDelta(t, 1.7, rounded.Difference, 1e-9)
	// 原值保持完整精度
	require.InDelta(t, 21.6666666, summary.TotalBooked, 1e-9)
}
