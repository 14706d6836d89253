package lock_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/lock"
)

func TestRecordToMap_UsesJSONFieldNames(t *testing.T) {
	ds := &domain.DaySchedule{
		ID:         7,
		IsWorking:  true,
		TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "12:00"}},
	}

	fields, err := lock.RecordToMap(ds)
	require.NoError(t, err)
	require.Contains(t, fields, "isWorking")
	require.Contains(t, fields, "timeBlocks")
	require.Equal(t, true, fields["isWorking"])
}

func TestDiff_OnlyReportsSubmittedAndDivergedFields(t *testing.T) {
	base := map[string]any{"isWorking": true, "note": "a", "timeBlocks": []any{}}
	current := map[string]any{"isWorking": false, "note": "b", "timeBlocks": []any{}}
	changes := map[string]any{"isWorking": true, "timeBlocks": []any{map[string]any{"start": "09:00", "end": "12:00"}}}

	conflicts := lock.Diff(base, current, changes)

	// note 在服务端变了但提交者没改它，不报告；
	// timeBlocks 提交者改了但服务端没动，同样不报告
	require.Len(t, conflicts, 1)
	require.Equal(t, "isWorking", conflicts[0].Field)
	require.Equal(t, false, conflicts[0].CurrentValue)
	require.Equal(t, true, conflicts[0].IncomingValue)
}

func TestDiff_NoConflictWhenServerUnchanged(t *testing.T) {
	base := map[string]any{"isWorking": true}
	current := map[string]any{"isWorking": true}
	changes := map[string]any{"isWorking": false}

	require.Empty(t, lock.Diff(base, current, changes))
}

func TestDiff_SkipsFieldsAbsentFromSnapshot(t *testing.T) {
	base := map[string]any{}
	current := map[string]any{"isWorking": false}
	changes := map[string]any{"isWorking": true}

	require.Empty(t, lock.Diff(base, current, changes))
}

func TestMerge_LastWriteWins(t *testing.T) {
	current := map[string]any{"isWorking": false, "note": "b"}
	changes := map[string]any{"isWorking": true}

	merged, err := lock.Merge(current, changes, nil, domain.StrategyLastWriteWins, nil)
	require.NoError(t, err)
	require.Equal(t, true, merged["isWorking"])
	require.Equal(t, "b", merged["note"])
}

func TestMerge_KeepCurrent(t *testing.T) {
	current := map[string]any{"isWorking": false}
	changes := map[string]any{"isWorking": true}

	merged, err := lock.Merge(current, changes, nil, domain.StrategyKeepCurrent, nil)
	require.NoError(t, err)
	require.Equal(t, false, merged["isWorking"])
}

func TestMerge_UserChoice(t *testing.T) {
	current := map[string]any{"isWorking": false, "note": "server", "extra": 1}
	changes := map[string]any{"isWorking": true, "note": "mine"}
	conflicts := []domain.Conflict{
		{Field: "isWorking", CurrentValue: false, IncomingValue: true},
		{Field: "note", CurrentValue: "server", IncomingValue: "mine"},
	}
	choices := map[string]string{"isWorking": lock.ChoiceIncoming, "note": lock.ChoiceCurrent}

	merged, err := lock.Merge(current, changes, conflicts, domain.StrategyUserChoice, choices)
	require.NoError(t, err)
	require.Equal(t, true, merged["isWorking"])
	require.Equal(t, "server", merged["note"])
	require.Equal(t, 1, merged["extra"])
}

func TestMerge_UserChoiceAppliesNonConflictedChanges(t *testing.T) {
	current := map[string]any{"isWorking": false, "note": "server"}
	changes := map[string]any{"isWorking": true, "note": "mine"}
	// 只有 note 有冲突，isWorking 无条件应用提交值
	conflicts := []domain.Conflict{{Field: "note", CurrentValue: "server", IncomingValue: "mine"}}
	choices := map[string]string{"note": lock.ChoiceCurrent}

	merged, err := lock.Merge(current, changes, conflicts, domain.StrategyUserChoice, choices)
	require.NoError(t, err)
	require.Equal(t, true, merged["isWorking"])
	require.Equal(t, "server", merged["note"])
}

func TestMerge_UserChoiceMissingOrInvalidChoice(t *testing.T) {
	current := map[string]any{"note": "server"}
	changes := map[string]any{"note": "mine"}
	conflicts := []domain.Conflict{{Field: "note", CurrentValue: "server", IncomingValue: "mine"}}

	_, err := lock.Merge(current, changes, conflicts, domain.StrategyUserChoice, map[string]string{})
	require.Error(t, err)

	_, err = lock.Merge(current, changes, conflicts, domain.StrategyUserChoice, map[string]string{"note": "both"})
	require.Error(t, err)
}

func TestMerge_ForceBehavesAsLastWriteWins(t *testing.T) {
	current := map[string]any{"isWorking": false}
	changes := map[string]any{"isWorking": true}

	merged, err := lock.Merge(current, changes, nil, domain.StrategyForce, nil)
	require.NoError(t, err)
	require.Equal(t, true, merged["isWorking"])
}

func TestMerge_UnknownStrategy(t *testing.T) {
	_, err := lock.Merge(map[string]any{}, map[string]any{}, nil, domain.ResolveStrategy("merge-3way"), nil)
	require.Error(t, err)
}
