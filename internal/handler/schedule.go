package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/schedule"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

func (h *Handler) loadTemplatesMap() (map[int64]*domain.ScheduleTemplate, error) {
	templates, err := h.repository.GetAllScheduleTemplates()
	if err != nil {
		return nil, err
	}

	templatesMap := make(map[int64]*domain.ScheduleTemplate, len(templates))
	for _, template := range templates {
		templatesMap[template.ID] = template
	}
	return templatesMap, nil
}

// resolveDates 解析某个用户一段日期的排班。
// persist 为 true 时按「首次解析才落库」的规则持久化：没有记录的日期落库，
// 已有模板来源的记录且解析结果有变化时覆盖，手动编辑过的记录保持不动。
func (h *Handler) resolveDates(user *domain.User, dates []string, templates map[int64]*domain.ScheduleTemplate, persist bool) ([]*domain.DaySchedule, error) {
	assignments, err := h.repository.GetUserTemplateAssignments(user.ID)
	if err != nil {
		return nil, err
	}

	existing, err := h.repository.GetDaySchedulesInRange(user.ID, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}

	days := make([]*domain.DaySchedule, 0, len(dates))
	for _, date := range dates {
		stored := existing[date]
		resolved := schedule.ResolveDay(user, date, stored, assignments, templates, false)

		if persist && resolved.Source == domain.SourceTemplate {
			if stored == nil || !sameSchedule(stored, resolved) {
				if err := h.repository.UpsertDaySchedule(resolved); err != nil {
					return nil, err
				}
			} else {
				resolved = stored
			}
		}

		days = append(days, resolved)
	}

	return days, nil
}

func sameSchedule(a, b *domain.DaySchedule) bool {
	if a.IsWorking != b.IsWorking || len(a.TimeBlocks) != len(b.TimeBlocks) {
		return false
	}
	for i := range a.TimeBlocks {
		if a.TimeBlocks[i] != b.TimeBlocks[i] {
			return false
		}
	}
	return true
}

// subjectUser 确定本次请求操作谁的排班：默认是自己，带 userId 查询参数时
// 要求排班管理员以上的角色。返回 nil 时错误响应已经写出。
func (h *Handler) subjectUser(w http.ResponseWriter, r *http.Request) *domain.User {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	userIDParam := r.URL.Query().Get("userId")
	if userIDParam == "" {
		return myInfo
	}

	userID, err := strconv.ParseInt(userIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "用户ID无效")
		return nil
	}
	if userID == myInfo.ID {
		return myInfo
	}

	if myInfo.Role == domain.RoleEmployee {
		h.errorResponse(w, r, "权限不足")
		return nil
	}

	user, err := h.repository.GetUserByID(userID)
	if err != nil {
		h.errorResponse(w, r, "用户不存在")
		return nil
	}
	return user
}

func (h *Handler) GetMyWeek(w http.ResponseWriter, r *http.Request) {
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

	days, err := h.resolveDates(user, dates, templates, true)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取周排班成功", days)
}

// GetTeamWeek 返回全部在职用户该周的排班。只读聚合，不落库也不加锁
func (h *Handler) GetTeamWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, ok := dateInPath(chi.URLParam(r, "weekStart"))
	if !ok {
		h.errorResponse(w, r, "周开始日期无效")
		return
	}

	dates, err := schedule.WeekDates(weekStart)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	templates, err := h.loadTemplatesMap()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	type memberWeek struct {
		UserID   int64                 `json:"userId"`
		FullName string                `json:"fullName"`
		Days     []*domain.DaySchedule `json:"days"`
	}

	team := make([]memberWeek, 0, len(users))
	for _, user := range users {
		if !user.IsActive {
			continue
		}

		days, err := h.resolveDates(user, dates, templates, false)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		team = append(team, memberWeek{
			UserID:   user.ID,
			FullName: user.FullName,
			Days:     days,
		})
	}

	h.successResponse(w, r, "获取团队周排班成功", team)
}

func (h *Handler) AcquireDayScheduleLock(w http.ResponseWriter, r *http.Request) {
	ds := r.Context().Value(DayScheduleCtx).(*domain.DaySchedule)
	h.acquireLock(w, r, domain.ResourceDaySchedule, ds.ID)
}

func (h *Handler) CancelDayScheduleLock(w http.ResponseWriter, r *http.Request) {
	ds := r.Context().Value(DayScheduleCtx).(*domain.DaySchedule)
	h.cancelLock(w, r, domain.ResourceDaySchedule, ds.ID)
}

func (h *Handler) UpdateDaySchedule(w http.ResponseWriter, r *http.Request) {
	ds := r.Context().Value(DayScheduleCtx).(*domain.DaySchedule)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		IsWorking  *bool              `json:"isWorking" validate:"required"`
		TimeBlocks []domain.TimeBlock `json:"timeBlocks" validate:"required"`
		submitRequest
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.checkEditLock(w, r, domain.ResourceDaySchedule, ds.ID, domain.ResolveStrategy(req.Strategy)) {
		return
	}

	changes := map[string]any{
		"isWorking":  *req.IsWorking,
		"timeBlocks": req.TimeBlocks,
	}

	merged := h.mergeSubmit(w, r, ds, changes, req.submitRequest)
	if merged == nil {
		return
	}

	var fields struct {
		IsWorking  bool               `json:"isWorking"`
		TimeBlocks []domain.TimeBlock `json:"timeBlocks"`
	}
	if err := decodeMerged(merged, &fields); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if fields.IsWorking {
		if err := utils.ValidateTimeBlocks(fields.TimeBlocks); err != nil {
			h.badRequest(w, r, err)
			return
		}
	} else {
		fields.TimeBlocks = []domain.TimeBlock{}
	}

	ds.IsWorking = fields.IsWorking
	ds.TimeBlocks = fields.TimeBlocks
	// 手动编辑之后解析器不再覆盖这一天，直到显式重新同步
	ds.Source = domain.SourceManual

	if err := h.repository.UpdateDaySchedule(ds); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "排班记录已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.releaseAfterCommit(r, domain.ResourceDaySchedule, ds.ID)

	h.publishEvent(domain.ScheduleEvent{
		Type:         domain.EventDayScheduleUpdated,
		ResourceType: domain.ResourceDaySchedule,
		ResourceID:   ds.ID,
		ActorID:      myInfo.ID,
		Data:         ds,
	})

	h.successResponse(w, r, "更新排班成功", ds)
}

// ResyncDaySchedule 丢弃某一天的手动编辑标记，重新按模板解析并落库
func (h *Handler) ResyncDaySchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   string `json:"date" validate:"required,datetime=2006-01-02"`
		UserID *int64 `json:"userId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := myInfo
	if req.UserID != nil && *req.UserID != myInfo.ID {
		if myInfo.Role == domain.RoleEmployee {
			h.errorResponse(w, r, "权限不足")
			return
		}
		var err error
		user, err = h.repository.GetUserByID(*req.UserID)
		if err != nil {
			h.errorResponse(w, r, "用户不存在")
			return
		}
	}

	assignments, err := h.repository.GetUserTemplateAssignments(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	templates, err := h.loadTemplatesMap()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	existing, err := h.repository.GetDaySchedulesInRange(user.ID, req.Date, req.Date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	resolved := schedule.ResolveDay(user, req.Date, existing[req.Date], assignments, templates, true)
	if err := h.repository.UpsertDaySchedule(resolved); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "重新同步成功", resolved)
}
