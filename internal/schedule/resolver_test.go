package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/schedule"
)

func strPtr(s string) *string {
	return &s
}

func weekdayTemplate(id int64) *domain.ScheduleTemplate {
	pattern := map[int32]domain.DayPattern{
		0: {IsWorking: false},
		6: {IsWorking: false},
	}
	for weekday := int32(1); weekday <= 5; weekday++ {
		pattern[weekday] = domain.DayPattern{
			IsWorking:  true,
			TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:30", End: "17:30"}},
		}
	}
	return &domain.ScheduleTemplate{ID: id, Name: "标准工作日", Pattern: pattern}
}

func TestSelectAssignment_HigherPriorityWins(t *testing.T) {
	base := &domain.TemplateAssignment{ID: 1, TemplateID: 10, StartDate: "2024-01-01", Priority: 0, IsActive: true}
	override := &domain.TemplateAssignment{ID: 2, TemplateID: 20, StartDate: "2024-03-01", EndDate: strPtr("2024-03-31"), Priority: 5, IsActive: true}
	assignments := []*domain.TemplateAssignment{base, override}

	// 三月内高优先级的临时分配生效
	selected := schedule.SelectAssignment(assignments, "2024-03-15")
	require.NotNil(t, selected)
	require.Equal(t, int64(2), selected.ID)

	// 四月临时分配已经结束，回落到长期分配
	selected = schedule.SelectAssignment(assignments, "2024-04-01")
	require.NotNil(t, selected)
	require.Equal(t, int64(1), selected.ID)
}

func TestSelectAssignment_SamePriorityLaterStartDateWins(t *testing.T) {
	older := &domain.TemplateAssignment{ID: 1, TemplateID: 10, StartDate: "2024-01-01", Priority: 3, IsActive: true}
	newer := &domain.TemplateAssignment{ID: 2, TemplateID: 20, StartDate: "2024-02-01", Priority: 3, IsActive: true}

	selected := schedule.SelectAssignment([]*domain.TemplateAssignment{older, newer}, "2024-03-01")
	require.Equal(t, int64(2), selected.ID)
}

func TestSelectAssignment_FullTieMostRecentlyCreatedWins(t *testing.T) {
	first := &domain.TemplateAssignment{ID: 1, TemplateID: 10, StartDate: "2024-01-01", Priority: 3, IsActive: true}
	second := &domain.TemplateAssignment{ID: 2, TemplateID: 20, StartDate: "2024-01-01", Priority: 3, IsActive: true}

	selected := schedule.SelectAssignment([]*domain.TemplateAssignment{first, second}, "2024-03-01")
	require.Equal(t, int64(2), selected.ID)

	// 输入顺序不影响结果
	selected = schedule.SelectAssignment([]*domain.TemplateAssignment{second, first}, "2024-03-01")
	require.Equal(t, int64(2), selected.ID)
}

func TestSelectAssignment_IgnoresInactiveAndOutOfRange(t *testing.T) {
	inactive := &domain.TemplateAssignment{ID: 1, TemplateID: 10, StartDate: "2024-01-01", Priority: 9, IsActive: false}
	ended := &domain.TemplateAssignment{ID: 2, TemplateID: 20, StartDate: "2024-01-01", EndDate: strPtr("2024-02-29"), Priority: 9, IsActive: true}
	notStarted := &domain.TemplateAssignment{ID: 3, TemplateID: 30, StartDate: "2024-04-01", Priority: 9, IsActive: true}

	selected := schedule.SelectAssignment([]*domain.TemplateAssignment{inactive, ended, notStarted}, "2024-03-15")
	require.Nil(t, selected)
}

func TestMaterializeDay_CopiesTemplateBlocks(t *testing.T) {
	template := weekdayTemplate(10)

	// 2024-03-15 是周五
	ds := schedule.MaterializeDay(7, "2024-03-15", template)
	require.True(t, ds.IsWorking)
	require.Equal(t, domain.SourceTemplate, ds.Source)
	require.Len(t, ds.TimeBlocks, 2)
	require.Equal(t, "09:00", ds.TimeBlocks[0].Start)

	// 修改结果不应污染模板
	ds.TimeBlocks[0].Start = "00:00"
	require.Equal(t, "09:00", template.Pattern[5].TimeBlocks[0].Start)
}

func TestMaterializeDay_RestDay(t *testing.T) {
	// 2024-03-16 是周六
	ds := schedule.MaterializeDay(7, "2024-03-16", weekdayTemplate(10))
	require.False(t, ds.IsWorking)
	require.Empty(t, ds.TimeBlocks)
}

func TestMaterializeDay_BrokenTemplateFallsBackToRestDay(t *testing.T) {
	// 模板缺失
	ds := schedule.MaterializeDay(7, "2024-03-15", nil)
	require.False(t, ds.IsWorking)

	// 缺少周五的安排
	partial := &domain.ScheduleTemplate{ID: 10, Pattern: map[int32]domain.DayPattern{1: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "17:00"}}}}}
	ds = schedule.MaterializeDay(7, "2024-03-15", partial)
	require.False(t, ds.IsWorking)

	// 时间段非法（结束早于开始）
	broken := &domain.ScheduleTemplate{ID: 10, Pattern: map[int32]domain.DayPattern{5: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "17:00", End: "09:00"}}}}}
	ds = schedule.MaterializeDay(7, "2024-03-15", broken)
	require.False(t, ds.IsWorking)
	require.Empty(t, ds.TimeBlocks)
}

func TestResolveDay_ManualEditTakesPrecedence(t *testing.T) {
	user := &domain.User{ID: 7}
	manual := &domain.DaySchedule{
		UserID:     7,
		Date:       "2024-03-15",
		IsWorking:  true,
		TimeBlocks: []domain.TimeBlock{{Start: "14:00", End: "18:00"}},
		Source:     domain.SourceManual,
	}
	assignments := []*domain.TemplateAssignment{{ID: 1, TemplateID: 10, StartDate: "2024-01-01", Priority: 0, IsActive: true}}
	templates := map[int64]*domain.ScheduleTemplate{10: weekdayTemplate(10)}

	resolved := schedule.ResolveDay(user, "2024-03-15", manual, assignments, templates, false)
	require.Same(t, manual, resolved)

	// resync 时丢弃手动编辑，重新按模板解析
	resolved = schedule.ResolveDay(user, "2024-03-15", manual, assignments, templates, true)
	require.Equal(t, domain.SourceTemplate, resolved.Source)
	require.Len(t, resolved.TimeBlocks, 2)
}

func TestResolveDay_LegacyDefaultsWhenNoAssignment(t *testing.T) {
	user := &domain.User{ID: 7, DefaultStart: strPtr("08:30"), DefaultEnd: strPtr("17:00")}

	// 周五按默认上下班时间生成
	resolved := schedule.ResolveDay(user, "2024-03-15", nil, nil, nil, false)
	require.True(t, resolved.IsWorking)
	require.Equal(t, []domain.TimeBlock{{Start: "08:30", End: "17:00"}}, resolved.TimeBlocks)

	// 周末不生成
	resolved = schedule.ResolveDay(user, "2024-03-16", nil, nil, nil, false)
	require.False(t, resolved.IsWorking)
}

func TestResolveDay_NoAssignmentNoDefaultsIsRestDay(t *testing.T) {
	user := &domain.User{ID: 7}

	resolved := schedule.ResolveDay(user, "2024-03-15", nil, nil, nil, false)
	require.False(t, resolved.IsWorking)
	require.Empty(t, resolved.TimeBlocks)
}

func TestResolveDay_Deterministic(t *testing.T) {
	user := &domain.User{ID: 7}
	assignments := []*domain.TemplateAssignment{
		{ID: 1, TemplateID: 10, StartDate: "2024-01-01", Priority: 0, IsActive: true},
		{ID: 2, TemplateID: 20, StartDate: "2024-03-01", EndDate: strPtr("2024-03-31"), Priority: 5, IsActive: true},
	}
	templates := map[int64]*domain.ScheduleTemplate{10: weekdayTemplate(10), 20: weekdayTemplate(20)}

	first := schedule.ResolveDay(user, "2024-03-15", nil, assignments, templates, false)
	second := schedule.ResolveDay(user, "2024-03-15", nil, assignments, templates, false)
	require.Equal(t, first, second)
}
