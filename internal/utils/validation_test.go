package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"
)

func TestValidateTimeBlocks(t *testing.T) {
	valid := []domain.TimeBlock{
		{Start: "08:00", End: "12:00"},
		{Start: "12:30", End: "16:30"},
	}
	require.NoError(t, utils.ValidateTimeBlocks(valid))

	// 相邻时间段允许首尾相接
	adjacent := []domain.TimeBlock{
		{Start: "08:00", End: "12:00"},
		{Start: "12:00", End: "16:00"},
	}
	require.NoError(t, utils.ValidateTimeBlocks(adjacent))

	require.NoError(t, utils.ValidateTimeBlocks(nil))
}

func TestValidateTimeBlocks_Invalid(t *testing.T) {
	// 格式错误
	require.Error(t, utils.ValidateTimeBlocks([]domain.TimeBlock{{Start: "8点", End: "12:00"}}))
	require.Error(t, utils.ValidateTimeBlocks([]domain.TimeBlock{{Start: "08:00", End: "25:00"}}))

	// 开始不早于结束（跨午夜的班次不支持）
	require.Error(t, utils.ValidateTimeBlocks([]domain.TimeBlock{{Start: "22:00", End: "06:00"}}))
	require.Error(t, utils.ValidateTimeBlocks([]domain.TimeBlock{{Start: "08:00", End: "08:00"}}))

	// 重叠
	require.Error(t, utils.ValidateTimeBlocks([]domain.TimeBlock{
		{Start: "08:00", End: "12:00"},
		{Start: "11:00", End: "14:00"},
	}))

	// 未按升序排列
	require.Error(t, utils.ValidateTimeBlocks([]domain.TimeBlock{
		{Start: "13:00", End: "14:00"},
		{Start: "08:00", End: "12:00"},
	}))
}

func TestValidatePattern(t *testing.T) {
	valid := map[int32]domain.DayPattern{
		0: {IsWorking: false},
		1: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "09:00", End: "17:00"}}},
	}
	require.NoError(t, utils.ValidatePattern(valid))

	// 键超出星期几范围
	require.Error(t, utils.ValidatePattern(map[int32]domain.DayPattern{7: {IsWorking: false}}))

	// 休息日不校验时间段
	rest := map[int32]domain.DayPattern{0: {IsWorking: false, TimeBlocks: []domain.TimeBlock{{Start: "bad", End: "worse"}}}}
	require.NoError(t, utils.ValidatePattern(rest))

	// 工作日的时间段必须合法
	broken := map[int32]domain.DayPattern{1: {IsWorking: true, TimeBlocks: []domain.TimeBlock{{Start: "17:00", End: "09:00"}}}}
	require.Error(t, utils.ValidatePattern(broken))
}

func TestValidateDateRange(t *testing.T) {
	end := "2024-03-31"
	require.NoError(t, utils.ValidateDateRange("2024-03-01", &end))
	require.NoError(t, utils.ValidateDateRange("2024-03-01", nil))

	// 开始和结束是同一天也是合法的单日分配
	sameDay := "2024-03-01"
	require.NoError(t, utils.ValidateDateRange("2024-03-01", &sameDay))

	require.Error(t, utils.ValidateDateRange("01/03/2024", nil))
	badEnd := "2024-13-01"
	require.Error(t, utils.ValidateDateRange("2024-03-01", &badEnd))
	before := "2024-02-01"
	require.Error(t, utils.ValidateDateRange("2024-03-01", &before))
}
