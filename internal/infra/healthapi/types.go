package healthapi

import (
	"math"

	"health-companion-app/internal/domain/health"
)

// Entry 是远端存储的日级记录线上格式。字段名是边界契约，
// 与内部 DailyRecord 的规范命名一一对应。
type Entry struct {
	ID                 uint    `json:"id,omitempty"`
	Datum              string  `json:"datum"`
	Schritte           int     `json:"schritte"`
	SchlafStunden      float64 `json:"schlaf_stunden"`
	SchlafIndex        float64 `json:"schlaf_index"`
	Gewicht            float64 `json:"gewicht"`
	HerzfrequenzRuhe   int     `json:"herzfrequenz_ruhe"`
	HerzfrequenzAvg    int     `json:"herzfrequenz_avg"`
	Aktivitaetsenergie int     `json:"aktivitaetsenergie"`
	TrainingMinuten    int     `json:"training_minuten"`
	Notizen            string  `json:"notizen"`
	CreatedAt          string  `json:"created_at,omitempty"`
	UpdatedAt          string  `json:"updated_at,omitempty"`
}

// EntryFromRecord 将内部日级记录确定性地映射为线上格式。
func EntryFromRecord(rec health.DailyRecord) Entry {
	return Entry{
		Datum:              rec.Date,
		Schritte:           rec.StepCount,
		SchlafStunden:      rec.SleepHours,
		SchlafIndex:        float64(rec.SleepQualityIndex),
		Gewicht:            rec.WeightKg,
		HerzfrequenzRuhe:   rec.RestingHeartRate,
		HerzfrequenzAvg:    rec.AverageHeartRate,
		Aktivitaetsenergie: rec.ActiveEnergyKcal,
		TrainingMinuten:    rec.TrainingMinutes,
		Notizen:            rec.Note,
	}
}

// Record 将线上格式还原为内部日级记录，睡眠指数取整。
func (e Entry) Record() health.DailyRecord {
	return health.DailyRecord{
		Date:              e.Datum,
		StepCount:         e.Schritte,
		SleepHours:        e.SchlafStunden,
		SleepQualityIndex: int(math.Round(e.SchlafIndex)),
		WeightKg:          e.Gewicht,
		RestingHeartRate:  e.HerzfrequenzRuhe,
		AverageHeartRate:  e.HerzfrequenzAvg,
		ActiveEnergyKcal:  e.Aktivitaetsenergie,
		TrainingMinutes:   e.TrainingMinuten,
		Note:              e.Notizen,
	}
}

// Stats 是聚合统计接口的响应体：窗口内的均值、极值与趋势指示。
type Stats struct {
	TotalEntries          int     `json:"total_entries"`
	AvgSchritte           float64 `json:"avg_schritte"`
	AvgSchlafStunden      float64 `json:"avg_schlaf_stunden"`
	AvgSchlafIndex        float64 `json:"avg_schlaf_index"`
	AvgHerzfrequenzRuhe   float64 `json:"avg_herzfrequenz_ruhe"`
	AvgHerzfrequenzAvg    float64 `json:"avg_herzfrequenz_avg"`
	AvgGewicht            float64 `json:"avg_gewicht"`
	AvgAktivitaetsenergie float64 `json:"avg_aktivitaetsenergie"`
	AvgTrainingMinuten    float64 `json:"avg_training_minuten"`
	MaxSchritte           int     `json:"max_schritte"`
	MinSchritte           int     `json:"min_schritte"`
	TrendSchritte         string  `json:"trend_schritte"`
	TrendSchlaf           string  `json:"trend_schlaf"`
}

// ChartData 是单指标时间序列接口的响应体。
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// UserInfo 是当前用户身份接口的响应体。
type UserInfo struct {
	Username string `json:"username"`
}
