package utils

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

const (
	ClockLayout = "15:04"
	DateLayout  = "2006-01-02"
)

// ValidateTimeBlocks 校验一天内的时间段：格式必须为 HH:MM，开始时间必须早于结束
// 时间（即不允许跨午夜，跨午夜的班次应当拆成两天提交），且各时间段按升序排列、互不重叠
func ValidateTimeBlocks(blocks []domain.TimeBlock) error {
	for i, block := range blocks {
		start, err := time.Parse(ClockLayout, block.Start)
		if err != nil {
			return fmt.Errorf("第 %d 个时间段的开始时间格式错误", i+1)
		}
		end, err := time.Parse(ClockLayout, block.End)
		if err != nil {
			return fmt.Errorf("第 %d 个时间段的结束时间格式错误", i+1)
		}
		if !start.Before(end) {
			return fmt.Errorf("第 %d 个时间段的开始时间必须早于结束时间", i+1)
		}
	}

	for i := 1; i < len(blocks); i++ {
		prevEnd, _ := time.Parse(ClockLayout, blocks[i-1].End)
		start, _ := time.Parse(ClockLayout, blocks[i].Start)

		if start.Before(prevEnd) {
			return fmt.Errorf("第 %d 个时间段和第 %d 个时间段重叠或未按升序排列", i, i+1)
		}
	}

	return nil
}

// ValidatePattern 校验模板的每周安排：键必须是 0 到 6 的星期几，工作日的时间段必须合法
func ValidatePattern(pattern map[int32]domain.DayPattern) error {
	for weekday, day := range pattern {
		if weekday < 0 || weekday > 6 {
			return fmt.Errorf("无效的星期几 %d", weekday)
		}
		if !day.IsWorking {
			continue
		}
		if err := ValidateTimeBlocks(day.TimeBlocks); err != nil {
			return fmt.Errorf("星期 %d：%w", weekday, err)
		}
	}

	return nil
}

// ValidateDateRange 校验分配的日期范围，end 为 nil 表示开放式分配
func ValidateDateRange(start string, end *string) error {
	if _, err := time.Parse(DateLayout, start); err != nil {
		return fmt.Errorf("开始日期格式错误")
	}
	if end == nil {
		return nil
	}
	if _, err := time.Parse(DateLayout, *end); err != nil {
		return fmt.Errorf("结束日期格式错误")
	}
	if *end < start {
		return fmt.Errorf("结束日期不能早于开始日期")
	}

	return nil
}
