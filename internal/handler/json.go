package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.writeJSON(w, r, http.StatusBadRequest, Response{
			Success: false,
			Message: err.Error(),
			Data:    nil,
		})
		return
	}

	h.writeJSON(w, r, http.StatusBadRequest, Response{
		Success: false,
		Message: validationErrors[0].Translate(h.translator),
		Data:    nil,
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusNotFound, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

// conflictResponse 返回逐字段的冲突明细，锁仍然保留，由客户端选择决议策略后重新提交
func (h *Handler) conflictResponse(w http.ResponseWriter, r *http.Request, conflicts []domain.Conflict) {
	h.writeJSON(w, r, http.StatusConflict, Response{
		Success: false,
		Message: "记录在您编辑期间被其他人修改了",
		Data:    map[string]any{"conflicts": conflicts},
	})
}

// staleLockResponse 表示提交者的锁已经过期，不能静默覆盖
func (h *Handler) staleLockResponse(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusConflict, Response{
		Success: false,
		Message: "编辑锁已过期，请重新获取后提交",
		Data:    nil,
	})
}

// lockedResponse 带着当前持有者和剩余存活时长（毫秒）立即返回，不阻塞等待
func (h *Handler) lockedResponse(w http.ResponseWriter, r *http.Request, held *domain.EditLock) {
	h.writeJSON(w, r, http.StatusLocked, Response{
		Success: false,
		Message: "该资源正在被其他用户编辑",
		Data: map[string]any{
			"lockedBy": map[string]any{
				"userName":  held.HolderName,
				"expiresIn": h.coordinator.RemainingTTL(held).Milliseconds(),
			},
		},
	})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// snakeToCamel 把 snake_case 的字段名转成 camelCase
func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}

	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// camelizeKeys 把客户端提交的字段名统一成实体的 camelCase JSON 字段名。
// 各个界面提交的字段名风格不统一（snake_case 和 camelCase 混用），在边界上
// 归一化一次，后面的冲突比对就不用再关心这件事。
func camelizeKeys(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	normalized := make(map[string]any, len(fields))
	for key, value := range fields {
		normalized[snakeToCamel(key)] = value
	}
	return normalized
}

// dateInPath 读取并校验路径中的 yyyy-MM-dd 日期参数
func dateInPath(param string) (string, bool) {
	if _, err := time.Parse("2006-01-02", param); err != nil {
		return "", false
	}
	return param, true
}
