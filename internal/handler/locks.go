package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/lock"
)

// decodeMerged 把合并后的字段集解码回类型化的实体字段
func decodeMerged(merged map[string]any, v any) error {
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (h *Handler) acquireLock(w http.ResponseWriter, r *http.Request, resourceType domain.ResourceType, resourceID int64) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	lk, held, err := h.coordinator.Acquire(r.Context(), resourceType, resourceID, myInfo.ID, myInfo.FullName)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if held != nil {
		h.lockedResponse(w, r, held)
		return
	}

	h.successResponse(w, r, "获取编辑锁成功", lk)
}

func (h *Handler) cancelLock(w http.ResponseWriter, r *http.Request, resourceType domain.ResourceType, resourceID int64) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if err := h.coordinator.Cancel(r.Context(), resourceType, resourceID, myInfo.ID); err != nil {
		switch {
		case errors.Is(err, lock.ErrLockExpired):
			h.staleLockResponse(w, r)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "已取消编辑并释放锁", nil)
}

// submitRequest 是冲突感知提交的公共部分。
// baseSnapshot 是提交者最后一次看到的记录（以 JSON 字段名为键），缺省时跳过
// 冲突检测直接提交；strategy 在检测出冲突后的二次提交时携带。
type submitRequest struct {
	BaseSnapshot map[string]any    `json:"baseSnapshot"`
	Strategy     string            `json:"strategy" validate:"omitempty,oneof=last-write-wins keep-current user-choice force"`
	Choices      map[string]string `json:"choices"`
}

// checkEditLock 在提交前校验编辑锁。
// force 策略直接接管他人的锁，其余情况要求提交者持有未过期的锁。
// 返回 false 时错误响应已经写出。
func (h *Handler) checkEditLock(w http.ResponseWriter, r *http.Request, resourceType domain.ResourceType, resourceID int64, strategy domain.ResolveStrategy) bool {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if strategy == domain.StrategyForce {
		previous, err := h.coordinator.Holder(r.Context(), resourceType, resourceID)
		if err != nil {
			h.internalServerError(w, r, err)
			return false
		}

		if _, err := h.coordinator.Force(r.Context(), resourceType, resourceID, myInfo.ID, myInfo.FullName); err != nil {
			h.internalServerError(w, r, err)
			return false
		}

		if previous != nil && previous.HolderID != myInfo.ID {
			h.publishEvent(domain.ScheduleEvent{
				Type:         domain.EventLockOverridden,
				ResourceType: resourceType,
				ResourceID:   resourceID,
				ActorID:      myInfo.ID,
				Data:         map[string]any{"previousHolder": previous.HolderName},
			})
		}
		return true
	}

	held, err := h.coordinator.Check(r.Context(), resourceType, resourceID, myInfo.ID)
	if err != nil {
		switch {
		case errors.Is(err, lock.ErrLockExpired):
			h.staleLockResponse(w, r)
		case errors.Is(err, lock.ErrNotHolder):
			h.lockedResponse(w, r, held)
		default:
			h.internalServerError(w, r, err)
		}
		return false
	}
	return true
}

// mergeSubmit 做快照比对和按策略合并。
// 检测到冲突且没有给出策略时写出 409 响应并返回 nil，锁保留，等客户端决议。
func (h *Handler) mergeSubmit(w http.ResponseWriter, r *http.Request, current any, changes map[string]any, req submitRequest) map[string]any {
	currentFields, err := lock.RecordToMap(current)
	if err != nil {
		h.internalServerError(w, r, err)
		return nil
	}

	strategy := domain.ResolveStrategy(req.Strategy)
	base := camelizeKeys(req.BaseSnapshot)

	var conflicts []domain.Conflict
	if base != nil {
		conflicts = lock.Diff(base, currentFields, changes)
	}

	if len(conflicts) > 0 && req.Strategy == "" {
		h.conflictResponse(w, r, conflicts)
		return nil
	}

	if req.Strategy == "" {
		// 没有分歧的普通提交
		strategy = domain.StrategyLastWriteWins
	}

	choices := make(map[string]string, len(req.Choices))
	for field, choice := range req.Choices {
		choices[snakeToCamel(field)] = choice
	}

	merged, err := lock.Merge(currentFields, changes, conflicts, strategy, choices)
	if err != nil {
		h.badRequest(w, r, err)
		return nil
	}
	return merged
}

// releaseAfterCommit 提交成功后释放锁，任何策略成功落库后锁都回到空闲状态
func (h *Handler) releaseAfterCommit(r *http.Request, resourceType domain.ResourceType, resourceID int64) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	if err := h.coordinator.Release(r.Context(), resourceType, resourceID, myInfo.ID); err != nil {
		h.logInternalServerError(r, err)
	}
}
