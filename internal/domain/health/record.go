/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 10:05:31
 * @FilePath: \health-companion-app\internal\domain\health\record.go
 * @LastEditTime: 2025-10-14 10:05:36
 */
package health

import "time"

// DateLayout 是日级记录使用的日期格式，同时也是远端存储的自然主键形式。
const DateLayout = "2006-01-02"

// DailyRecord 表示某个日历日的全部健康指标。
// 所有数值字段在数据源缺失或读取失败时取 0，记录本身始终是完整的。
type DailyRecord struct {
	Date              string
	StepCount         int
	SleepHours        float64
	SleepQualityIndex int
	WeightKg          float64
	RestingHeartRate  int
	AverageHeartRate  int
	ActiveEnergyKcal  int
	TrainingMinutes   int
	Note              string
}

// SleepQuality 根据睡眠时长估算睡眠质量指数。
// 固定档位：[7,9] 小时 90 分，[6,7) 75 分，超过 9 小时 70 分，其余（含 0）50 分。
// 仅在 hours > 0 时该指数才有解释意义。
func SleepQuality(hours float64) int {
	switch {
	case hours >= 7 && hours <= 9:
		return 90
	case hours >= 6 && hours < 7:
		return 75
	case hours > 9:
		return 70
	default:
		return 50
	}
}

// DayWindow 返回给定日历日的半开时间窗 [当日 00:00, 次日 00:00)，采用本地时区。
func DayWindow(day time.Time) (time.Time, time.Time) {
	loc := day.Location()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// FormatDate 将时间转换为日级记录的日期键。
func FormatDate(day time.Time) string {
	return day.Format(DateLayout)
}
