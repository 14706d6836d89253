package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/schedule"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

func TestWeekDates(t *testing.T) {
	dates, err := schedule.WeekDates("2024-03-11")
	require.NoError(t, err)
	require.Len(t, dates, 7)
	require.Equal(t, "2024-03-11", dates[0])
	require.Equal(t, "2024-03-17", dates[6])

	_, err = schedule.WeekDates("11/03/2024")
	require.Error(t, err)
}

func TestMondayOnOrBefore(t *testing.T) {
	// 2024-03-15 是周五，所在周的周一是 2024-03-11
	friday := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2024-03-11", schedule.MondayOnOrBefore(friday).Format(utils.DateLayout))

	// 周一返回自身
	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2024-03-11", schedule.MondayOnOrBefore(monday).Format(utils.DateLayout))

	// 周日归属到前一个周一
	sunday := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2024-03-11", schedule.MondayOnOrBefore(sunday).Format(utils.DateLayout))
}

func TestMonthDates_CoversBoundaryWeeks(t *testing.T) {
	dates := schedule.MonthDates(2024, 3)

	// 2024 年 3 月由 5 个 ISO 周覆盖，从 2 月 26 日（周一）到 3 月 31 日（周日）
	require.Len(t, dates, 35)
	require.Equal(t, "2024-02-26", dates[0])
	require.Equal(t, "2024-03-31", dates[34])
}

// fullTimeMonth 为 MonthDates 的全部日期生成周一到周五每天 8 小时的排班
func fullTimeMonth(year, month int) map[string]*domain.DaySchedule {
	days := make(map[string]*domain.DaySchedule)
	for _, date := range schedule.MonthDates(year, month) {
		day, _ := time.Parse(utils.DateLayout, date)
		working := day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
		ds := &domain.DaySchedule{Date: date, IsWorking: working, Source: domain.SourceTemplate}
		if working {
			ds.TimeBlocks = []domain.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:00", End: "18:00"}}
		}
		days[date] = ds
	}
	return days
}

func TestMonthSummary_ProratesBoundaryWeeks(t *testing.T) {
	days := fullTimeMonth(2024, 3)
	summary := schedule.MonthSummary(2024, 3, 40, days, nil)

	require.Len(t, summary.Weeks, 5)

	// 首个边界周（2 月 26 日起）只有 3 月 1 日这一个工作日落在本月，
	// 定额按 1/5 折算
	first := summary.Weeks[0]
	require.Equal(t, "2024-02-26", first.WeekStart)
	require.InDelta(t, 0.2, first.Fraction, 1e-9)
	require.InDelta(t, 8.0, first.ExpectedHours, 1e-9)
	require.InDelta(t, 8.0, first.TotalBooked, 1e-9)
	require.Equal(t, domain.HoursStatusExact, first.Status)

	// 完整周不折算
	require.InDelta(t, 1.0, summary.Weeks[2].Fraction, 1e-9)

	// 2024 年 3 月有 21 个工作日，满勤时月度恰好达标
	require.Equal(t, 21, summary.WorkingDaysCount)
	require.InDelta(t, 168.0, summary.ExpectedHours, 1e-9)
	require.InDelta(t, 168.0, summary.TotalBooked, 1e-9)
	require.InDelta(t, 4.2, summary.TotalWeeks, 1e-9)
	require.InDelta(t, summary.ExpectedHours, summary.TotalQuota, 1e-9)
	require.Equal(t, domain.HoursStatusExact, summary.Status)
}

func TestMonthSummary_HolidaysReduceWorkingDaysNotBookedHours(t *testing.T) {
	days := fullTimeMonth(2024, 3)
	holidays := map[string]bool{"2024-03-08": true}
	summary := schedule.MonthSummary(2024, 3, 40, days, holidays)

	// 节假日从工作日中扣除，该周只剩 4 个工作日但折算比例仍是 4/4；
	// 排在节假日上的 8 小时照常计入工时
	week := summary.Weeks[1]
	require.Equal(t, "2024-03-04", week.WeekStart)
	require.InDelta(t, 1.0, week.Fraction, 1e-9)
	require.InDelta(t, 40.0, week.TotalBooked, 1e-9)
	require.Equal(t, domain.HoursStatusExact, week.Status)

	require.Equal(t, 20, summary.WorkingDaysCount)
	require.InDelta(t, 168.0, summary.TotalBooked, 1e-9)
	require.Equal(t, domain.HoursStatusExact, summary.Status)
}

func TestMonthSummary_BookedMatchesSumOfDayHours(t *testing.T) {
	days := fullTimeMonth(2024, 3)
	holidays := map[string]bool{"2024-03-08": true, "2024-03-15": true}
	summary := schedule.MonthSummary(2024, 3, 40, days, holidays)

	// 月度总工时必须等于本月每一天工时之和，节假日不例外
	total := 0.0
	for date, ds := range days {
		if date >= "2024-03-01" && date <= "2024-03-31" {
			total += schedule.DayHours(ds)
		}
	}
	require.InDelta(t, total, summary.TotalBooked, 1e-9)
}

func TestMonthSummary_NoWorkingDaysYieldsZeroQuota(t *testing.T) {
	// 完全没有排班时不产生任何定额，空月份是达标而不是欠时；
	// 周占比按日历天数折算，totalWeeks 仍反映月份覆盖情况
	summary := schedule.MonthSummary(2024, 3, 40, map[string]*domain.DaySchedule{}, nil)

	first := summary.Weeks[0]
	require.InDelta(t, 3.0/7, first.Fraction, 1e-9)
	require.Zero(t, first.ExpectedHours)
	require.Zero(t, first.TotalBooked)
	require.Equal(t, domain.HoursStatusExact, first.Status)

	require.Equal(t, 0, summary.WorkingDaysCount)
	require.Zero(t, summary.ExpectedHours)
	require.Zero(t, summary.TotalQuota)
	require.Equal(t, domain.HoursStatusExact, summary.Status)
}

func TestMonthSummary_AllHolidayMonth(t *testing.T) {
	// 整月的工作日全是节假日
	holidays := make(map[string]bool)
	for _, date := range schedule.MonthDates(2024, 3) {
		day, _ := time.Parse(utils.DateLayout, date)
		if day.Month() == time.March && day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			holidays[date] = true
		}
	}

	// 没有人上班：定额和工时都是 0，达标
	summary := schedule.MonthSummary(2024, 3, 40, map[string]*domain.DaySchedule{}, holidays)
	require.Zero(t, summary.ExpectedHours)
	require.Zero(t, summary.TotalBooked)
	require.Equal(t, 0, summary.WorkingDaysCount)
	require.Equal(t, domain.HoursStatusExact, summary.Status)

	// 节假日仍有人排班：定额为 0 但工时照常累计，结果是超时
	summary = schedule.MonthSummary(2024, 3, 40, fullTimeMonth(2024, 3), holidays)
	require.Zero(t, summary.ExpectedHours)
	require.InDelta(t, 168.0, summary.TotalBooked, 1e-9)
	require.Equal(t, domain.HoursStatusOver, summary.Status)
}

func TestRoundMonthSummary(t *testing.T) {
	summary := schedule.MonthSummary(2024, 3, 37.33333, fullTimeMonth(2024, 3), nil)
	rounded := schedule.RoundMonthSummary(summary)

	// 展示值保留一位小数，原值保持完整精度
	require.NotEqual(t, summary.ExpectedHours, 0.0)
	require.InDelta(t, rounded.ExpectedHours, summary.ExpectedHours, 0.05)
	for _, week := range rounded.Weeks {
		require.InDelta(t, week.ExpectedHours, schedule.Round1(week.ExpectedHours), 1e-9)
	}
}
