package domain

type HoursStatus string

const (
	HoursStatusOver  HoursStatus = "over"
	HoursStatusUnder HoursStatus = "under"
	HoursStatusExact HoursStatus = "exact"
)

// HoursSummary 是某一周的工时汇总，只在读取时计算，不落库
type HoursSummary struct {
	WeekStart     string      `json:"weekStart"`
	WeeklyQuota   float64     `json:"weeklyQuota"`
	TotalBooked   float64     `json:"totalBooked"`
	ExpectedHours float64     `json:"expectedHours"`
	Difference    float64     `json:"difference"`
	Status        HoursStatus `json:"status"`
}

// MonthWeek 是月度汇总中单个 ISO 周的明细。
// Fraction 表示该周有多大比例算在本月内，跨月的边界周会小于 1。
type MonthWeek struct {
	WeekStart     string      `json:"weekStart"`
	Fraction      float64     `json:"fraction"`
	ExpectedHours float64     `json:"expectedHours"`
	TotalBooked   float64     `json:"totalBooked"`
	Difference    float64     `json:"difference"`
	Status        HoursStatus `json:"status"`
}

type MonthSummary struct {
	Year             int         `json:"year"`
	Month            int         `json:"month"`
	WeeklyQuota      float64     `json:"weeklyQuota"`
	TotalQuota       float64     `json:"totalQuota"`
	TotalBooked      float64     `json:"totalBooked"`
	ExpectedHours    float64     `json:"expectedHours"`
	Difference       float64     `json:"difference"`
	Status           HoursStatus `json:"status"`
	WorkingDaysCount int         `json:"workingDaysCount"`
	TotalWeeks       float64     `json:"totalWeeks"`
	Weeks            []MonthWeek `json:"weeks"`
}
