package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/schedule"
)

func (h *Handler) GetWeekHoursSummary(w http.ResponseWriter, r *http.Request) {
	weekStart, ok := dateInPath(chi.URLParam(r, "weekStart"))
	if !ok {
		h.errorResponse(w, r, "周开始日期无效")
		return
	}

	user := h.subjectUser(w, r)
	if user == nil {
		return
	}

	dates, err := schedule.WeekDates(weekStart)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	templates, err := h.loadTemplatesMap()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	days, err := h.resolveDates(user, dates, templates, false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summary := schedule.WeekSummary(weekStart, days, user.WeeklyQuota)

	h.successResponse(w, r, "获取周工时汇总成功", schedule.RoundWeekSummary(summary))
}

func (h *Handler) GetMonthHoursSummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		h.errorResponse(w, r, "年份无效")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		h.errorResponse(w, r, "月份无效")
		return
	}

	user := h.subjectUser(w, r)
	if user == nil {
		return
	}

	// 月度汇总按覆盖整个月的所有 ISO 周聚合，跨月边界周的月外日期也要解析，
	// 折算比例才算得出来
	dates := schedule.MonthDates(year, month)

	templates, err := h.loadTemplatesMap()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	days, err := h.resolveDates(user, dates, templates, false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	daysByDate := make(map[string]*domain.DaySchedule, len(days))
	for _, day := range days {
		daysByDate[day.Date] = day
	}

	holidays, err := h.repository.GetHolidaysInRange(dates[0], dates[len(dates)-1])
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summary := schedule.MonthSummary(year, month, user.WeeklyQuota, daysByDate, holidays)

	h.successResponse(w, r, "获取月工时汇总成功", schedule.RoundMonthSummary(summary))
}
