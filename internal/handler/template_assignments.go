package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

func (h *Handler) GetAllTemplateAssignments(w http.ResponseWriter, r *http.Request) {
	tas, err := h.repository.GetAllTemplateAssignments()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取模板分配列表成功", tas)
}

func (h *Handler) CreateTemplateAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     int64   `json:"userId" validate:"required"`
		TemplateID int64   `json:"templateId" validate:"required"`
		StartDate  string  `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate    *string `json:"endDate"`
		Priority   int32   `json:"priority"`
		IsActive   *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ta := &domain.TemplateAssignment{
		UserID:     req.UserID,
		TemplateID: req.TemplateID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Priority:   req.Priority,
		IsActive:   isActive,
	}

	if err := h.repository.CreateTemplateAssignment(ta); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "template_assignments_user_id_fkey":
				h.errorResponse(w, r, "用户不存在")
			case "template_assignments_template_id_fkey":
				h.errorResponse(w, r, "模板不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建模板分配成功", ta)
}

func (h *Handler) GetTemplateAssignment(w http.ResponseWriter, r *http.Request) {
	ta := r.Context().Value(TemplateAssignmentCtx).(*domain.TemplateAssignment)

	h.successResponse(w, r, "获取模板分配成功", ta)
}

func (h *Handler) UpdateTemplateAssignment(w http.ResponseWriter, r *http.Request) {
	ta := r.Context().Value(TemplateAssignmentCtx).(*domain.TemplateAssignment)

	var req struct {
		TemplateID *int64  `json:"templateId"`
		StartDate  *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
		EndDate    *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		ClearEnd   bool    `json:"clearEnd"`
		Priority   *int32  `json:"priority"`
		IsActive   *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.TemplateID != nil {
		ta.TemplateID = *req.TemplateID
	}
	if req.StartDate != nil {
		ta.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		ta.EndDate = req.EndDate
	}
	if req.ClearEnd {
		// 把有截止日期的分配改成开放式分配
		ta.EndDate = nil
	}
	if req.Priority != nil {
		ta.Priority = *req.Priority
	}
	if req.IsActive != nil {
		ta.IsActive = *req.IsActive
	}

	if err := utils.ValidateDateRange(ta.StartDate, ta.EndDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateTemplateAssignment(ta); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "template_assignments_template_id_fkey":
				h.errorResponse(w, r, "模板不存在")
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

	h.successResponse(w, r, "更新模板分配成功", ta)
}

func (h *Handler) DeleteTemplateAssignment(w http.ResponseWriter, r *http.Request) {
	ta := r.Context().Value(TemplateAssignmentCtx).(*domain.TemplateAssignment)

	if err := h.repository.DeleteTemplateAssignment(ta.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除模板分配成功", nil)
}
