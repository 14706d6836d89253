package schedule

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

// WeekDates 返回从 weekStart 开始连续 7 天的日期列表
func WeekDates(weekStart string) ([]string, error) {
	start, err := time.Parse(utils.DateLayout, weekStart)
	if err != nil {
		return nil, fmt.Errorf("周开始日期格式错误")
	}

	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = start.AddDate(0, 0, i).Format(utils.DateLayout)
	}
	return dates, nil
}

// MondayOnOrBefore 返回不晚于 t 的最近一个周一
func MondayOnOrBefore(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// MonthDates 返回覆盖整个月份的所有 ISO 周（周一为每周第一天）的全部日期，
// 含跨月边界周落在月外的日期
func MonthDates(year, month int) []string {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	dates := make([]string, 0, 42)
	for d := MondayOnOrBefore(first); !d.After(last); d = d.AddDate(0, 0, 7) {
		for i := 0; i < 7; i++ {
			dates = append(dates, d.AddDate(0, 0, i).Format(utils.DateLayout))
		}
	}
	return dates
}

// MonthSummary 汇总一个月的工时。月份按 ISO 周切分，跨月的边界周按「该周
// 落在本月内的工作日 / 该周全部工作日」的比例折算 expectedHours，工作日数在
// 扣除法定节假日之后统计。节假日只影响工作日口径：真排在节假日上的工时照常
// 计入 totalBooked，这样月度总工时和逐周汇总相加的结果保持一致。days 以日期
// 为键，应当覆盖 MonthDates 返回的全部日期（含月外的边界日）；缺失的日期按
// 休息日处理。
func MonthSummary(year, month int, weeklyQuota float64, days map[string]*domain.DaySchedule, holidays map[string]bool) *domain.MonthSummary {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	summary := &domain.MonthSummary{
		Year:        year,
		Month:       month,
		WeeklyQuota: weeklyQuota,
		Weeks:       make([]domain.MonthWeek, 0, 6),
	}

	for weekStart := MondayOnOrBefore(first); !weekStart.After(last); weekStart = weekStart.AddDate(0, 0, 7) {
		weekWorkingDays := 0
		inMonthWorkingDays := 0
		inMonthCalendarDays := 0
		weekBooked := 0.0

		for i := 0; i < 7; i++ {
			day := weekStart.AddDate(0, 0, i)
			date := day.Format(utils.DateLayout)
			inMonth := day.Month() == time.Month(month) && day.Year() == year

			if inMonth {
				inMonthCalendarDays++
			}

			ds := days[date]
			if ds == nil || !ds.IsWorking {
				continue
			}

			if inMonth {
				weekBooked += DayHours(ds)
			}

			if holidays[date] {
				continue
			}
			weekWorkingDays++
			if inMonth {
				inMonthWorkingDays++
			}
		}

		// 一周内完全没有工作日（全是休息日或节假日）时该周不产生定额，
		// 占比只按日历天数折算，让 totalWeeks 仍然能反映月份覆盖情况
		var fraction float64
		var expected float64
		if weekWorkingDays > 0 {
			fraction = float64(inMonthWorkingDays) / float64(weekWorkingDays)
			expected = weeklyQuota * fraction
		} else {
			fraction = float64(inMonthCalendarDays) / 7
		}
		difference := weekBooked - expected

		summary.Weeks = append(summary.Weeks, domain.MonthWeek{
			WeekStart:     weekStart.Format(utils.DateLayout),
			Fraction:      fraction,
			ExpectedHours: expected,
			TotalBooked:   weekBooked,
			Difference:    difference,
			Status:        statusOf(difference),
		})

		summary.ExpectedHours += expected
		summary.TotalBooked += weekBooked
		summary.TotalWeeks += fraction
		summary.WorkingDaysCount += inMonthWorkingDays
	}

	summary.TotalQuota = summary.ExpectedHours
	summary.Difference = summary.TotalBooked - summary.ExpectedHours
	summary.Status = statusOf(summary.Difference)

	return summary
}

// RoundMonthSummary 返回展示用的副本，各项数值保留一位小数
func RoundMonthSummary(s *domain.MonthSummary) *domain.MonthSummary {
	rounded := *s
	rounded.TotalQuota = Round1(s.TotalQuota)
	rounded.TotalBooked = Round1(s.TotalBooked)
	rounded.ExpectedHours = Round1(s.ExpectedHours)
	rounded.Difference = Round1(s.Difference)
	rounded.TotalWeeks = Round1(s.TotalWeeks)

	rounded.Weeks = make([]domain.MonthWeek, len(s.Weeks))
	for i, week := range s.Weeks {
		week.ExpectedHours = Round1(week.ExpectedHours)
		week.TotalBooked = Round1(week.TotalBooked)
		week.Difference = Round1(week.Difference)
		rounded.Weeks[i] = week
	}

	return &rounded
}
