package lock

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

// RecordToMap 把实体转成以 JSON 字段名为键的 map，供逐字段比对使用。
// 冲突中的字段名必须和实体的 JSON 字段名完全一致，客户端才能直接套用
// user-choice 的决议结果。
func RecordToMap(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// jsonEqual 通过 JSON 序列化比较两个值是否相等，屏蔽 map 遍历顺序和
// 数值类型（int/float64）的差异
func jsonEqual(a, b any) bool {
	dataA, errA := json.Marshal(a)
	dataB, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(dataA, dataB)
}

// Diff 把提交者最后一次看到的快照和当前存储值逐字段比对。
// 只对提交者真正修改的字段（changes 的键）产生冲突；快照之后服务端没有变动
// 的字段即使出现在 changes 中也不算冲突，服务端变了但提交者没碰的字段同样
// 不报告。
func Diff(base, current, changes map[string]any) []domain.Conflict {
	conflicts := make([]domain.Conflict, 0)

	for field, incoming := range changes {
		baseValue, seen := base[field]
		if !seen {
			// 快照里没有这个字段，无从判断分歧，按无冲突处理
			continue
		}
		currentValue := current[field]
		if jsonEqual(baseValue, currentValue) {
			continue
		}
		conflicts = append(conflicts, domain.Conflict{
			Field:         field,
			CurrentValue:  currentValue,
			IncomingValue: incoming,
		})
	}

	return conflicts
}

// Choice 是 user-choice 决议中单个字段的取舍
const (
	ChoiceCurrent  = "current"
	ChoiceIncoming = "incoming"
)

// Merge 按决议策略合并当前值和提交的修改，返回合并后的完整字段集。
// force 不是合并策略（它只作用于锁的接管），传进来视为 last-write-wins。
func Merge(current, changes map[string]any, conflicts []domain.Conflict, strategy domain.ResolveStrategy, choices map[string]string) (map[string]any, error) {
	merged := make(map[string]any, len(current))
	for field, value := range current {
		merged[field] = value
	}

	switch strategy {
	case domain.StrategyKeepCurrent:
		// 完全丢弃提交的修改
		return merged, nil
	case domain.StrategyLastWriteWins, domain.StrategyForce:
		for field, value := range changes {
			merged[field] = value
		}
		return merged, nil
	case domain.StrategyUserChoice:
		conflicted := make(map[string]bool, len(conflicts))
		for _, conflict := range conflicts {
			conflicted[conflict.Field] = true
		}

		// 没有冲突的字段无条件应用提交的修改
		for field, value := range changes {
			if !conflicted[field] {
				merged[field] = value
			}
		}

		for _, conflict := range conflicts {
			choice, exists := choices[conflict.Field]
			if !exists {
				return nil, fmt.Errorf("字段 %s 缺少取舍决定", conflict.Field)
			}
			switch choice {
			case ChoiceCurrent:
				// 保留当前值，不动
			case ChoiceIncoming:
				merged[conflict.Field] = changes[conflict.Field]
			default:
				return nil, fmt.Errorf("字段 %s 的取舍决定 %s 无效", conflict.Field, choice)
			}
		}
		return merged, nil
	default:
		return nil, fmt.Errorf("未知的冲突决议策略 %s", strategy)
	}
}
