package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string   `json:"username"`
		FullName     string   `json:"fullName" validate:"required"`
		Email        string   `json:"email" validate:"required,email"`
		Role         string   `json:"role" validate:"required,oneof=员工 排班管理员 系统管理员"`
		WeeklyQuota  *float64 `json:"weeklyQuota" validate:"omitempty,gte=0,lte=80"`
		DefaultStart *string  `json:"defaultStart"`
		DefaultEnd   *string  `json:"defaultEnd"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 没有指定用户名时根据姓名的拼音生成一个
	if req.Username == "" {
		req.Username = utils.GenerateUsernameFromChineseName(req.FullName)
	}

	// 生成随机密码
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	weeklyQuota := h.config.NewUser.WeeklyQuota
	if req.WeeklyQuota != nil {
		weeklyQuota = *req.WeeklyQuota
	}

	// 旧版默认上下班时间要么都填要么都不填
	if (req.DefaultStart == nil) != (req.DefaultEnd == nil) {
		h.badRequest(w, r, errors.New("默认上下班时间必须同时填写"))
		return
	}
	if req.DefaultStart != nil {
		if err := utils.ValidateTimeBlocks([]domain.TimeBlock{{Start: *req.DefaultStart, End: *req.DefaultEnd}}); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
		WeeklyQuota:  weeklyQuota,
		DefaultStart: req.DefaultStart,
		DefaultEnd:   req.DefaultEnd,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "users_username_key":
				h.errorResponse(w, r, "用户名已存在")
			case "users_email_key":
				h.errorResponse(w, r, "邮箱已被使用")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 初始密码直接随响应返回，由管理员线下转交给员工
	h.successResponse(w, r, "创建用户成功", map[string]any{
		"user":            user,
		"initialPassword": password,
	})
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	h.successResponse(w, r, "获取用户信息成功", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Email        *string  `json:"email" validate:"omitempty,email"`
		Role         *string  `json:"role" validate:"omitempty,oneof=员工 排班管理员 系统管理员"`
		WeeklyQuota  *float64 `json:"weeklyQuota" validate:"omitempty,gte=0,lte=80"`
		DefaultStart *string  `json:"defaultStart"`
		DefaultEnd   *string  `json:"defaultEnd"`
		IsActive     *bool    `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.WeeklyQuota != nil {
		user.WeeklyQuota = *req.WeeklyQuota
	}
	if req.DefaultStart != nil {
		user.DefaultStart = req.DefaultStart
	}
	if req.DefaultEnd != nil {
		user.DefaultEnd = req.DefaultEnd
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if user.DefaultStart != nil && user.DefaultEnd != nil {
		if err := utils.ValidateTimeBlocks([]domain.TimeBlock{{Start: *user.DefaultStart, End: *user.DefaultEnd}}); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	if err := h.repository.UpdateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "users_email_key":
				h.errorResponse(w, r, "邮箱已被使用")
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

	h.successResponse(w, r, "更新用户成功", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除用户成功", nil)
}
