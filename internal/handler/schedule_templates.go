package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

func (h *Handler) GetAllScheduleTemplates(w http.ResponseWriter, r *http.Request) {
	sts, err := h.repository.GetAllScheduleTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排班模板成功", sts)
}

func (h *Handler) CreateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string                      `json:"name" validate:"required"`
		Description string                      `json:"description"`
		IsGlobal    bool                        `json:"isGlobal"`
		IsDefault   bool                        `json:"isDefault"`
		Pattern     map[int32]domain.DayPattern `json:"pattern" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidatePattern(req.Pattern); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := &domain.ScheduleTemplate{
		Name:        req.Name,
		Description: req.Description,
		IsGlobal:    req.IsGlobal,
		IsDefault:   req.IsDefault,
		Pattern:     req.Pattern,
	}

	if err := h.repository.CreateScheduleTemplate(st); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "schedule_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建模板成功", st)
}

func (h *Handler) GetScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	h.successResponse(w, r, "获取模板成功", st)
}

func (h *Handler) AcquireTemplateLock(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)
	h.acquireLock(w, r, domain.ResourceTemplate, st.ID)
}

func (h *Handler) CancelTemplateLock(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)
	h.cancelLock(w, r, domain.ResourceTemplate, st.ID)
}

// UpdateScheduleTemplate 和排班日的更新一样走编辑锁和冲突决议的流程，
// 模板是共享资源，两个管理员同时编辑时的分歧同样要逐字段暴露出来
func (h *Handler) UpdateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name        *string                     `json:"name"`
		Description *string                     `json:"description"`
		IsGlobal    *bool                       `json:"isGlobal"`
		IsDefault   *bool                       `json:"isDefault"`
		Pattern     map[int32]domain.DayPattern `json:"pattern"`
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

	if !h.checkEditLock(w, r, domain.ResourceTemplate, st.ID, domain.ResolveStrategy(req.Strategy)) {
		return
	}

	// 只把请求中真正出现的字段算作修改
	changes := make(map[string]any)
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.IsGlobal != nil {
		changes["isGlobal"] = *req.IsGlobal
	}
	if req.IsDefault != nil {
		changes["isDefault"] = *req.IsDefault
	}
	if req.Pattern != nil {
		changes["pattern"] = req.Pattern
	}

	merged := h.mergeSubmit(w, r, st, changes, req.submitRequest)
	if merged == nil {
		return
	}

	var fields struct {
		Name        string                      `json:"name"`
		Description string                      `json:"description"`
		IsGlobal    bool                        `json:"isGlobal"`
		IsDefault   bool                        `json:"isDefault"`
		Pattern     map[int32]domain.DayPattern `json:"pattern"`
	}
	if err := decodeMerged(merged, &fields); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidatePattern(fields.Pattern); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st.Name = fields.Name
	st.Description = fields.Description
	st.IsGlobal = fields.IsGlobal
	st.IsDefault = fields.IsDefault
	st.Pattern = fields.Pattern

	if err := h.repository.UpdateScheduleTemplate(st); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "schedule_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.releaseAfterCommit(r, domain.ResourceTemplate, st.ID)

	h.publishEvent(domain.ScheduleEvent{
		Type:         domain.EventTemplateUpdated,
		ResourceType: domain.ResourceTemplate,
		ResourceID:   st.ID,
		ActorID:      myInfo.ID,
		Data:         st,
	})

	h.successResponse(w, r, "更新模板成功", st)
}

func (h *Handler) DeleteScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	if err := h.repository.DeleteScheduleTemplate(st.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "template_assignments_template_id_fkey":
				h.errorResponse(w, r, "该模板已被分配给用户，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除模板成功", nil)
}
