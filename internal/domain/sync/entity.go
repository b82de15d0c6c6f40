package sync

import (
	"time"

	"gorm.io/datatypes"
)

// Trigger 区分一次同步的触发来源。
type Trigger string

const (
	// TriggerAutomatic 表示由后台调度器周期性触发。
	TriggerAutomatic Trigger = "automatic"
	// TriggerManual 表示由用户显式发起。
	TriggerManual Trigger = "manual"
)

// State 映射 sync_state 表的单例行，保存伴侣应用的连接与同步配置。
// lastSyncAt 仅在一次传输成功后由调度器更新，其余字段来自设置流程。
type State struct {
	ID           uint       `gorm:"column:id;primaryKey"`
	ServerIP     string     `gorm:"column:server_ip"`
	FrontendPort string     `gorm:"column:frontend_port"`
	BackendPort  string     `gorm:"column:backend_port"`
	Token        string     `gorm:"column:token"`
	AutoSync     bool       `gorm:"column:auto_sync"`
	LastSyncAt   *time.Time `gorm:"column:last_sync_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

// TableName 返回对应的表名，避免 Gorm 使用默认复数命名。
func (State) TableName() string {
	return "sync_state"
}

// Run 记录一次同步尝试的结果，payload 保存实际提交的线上格式快照。
type Run struct {
	ID        uint           `gorm:"column:id;primaryKey"`
	RunID     string         `gorm:"column:run_id;size:36;index"`
	Datum     string         `gorm:"column:datum;size:10;index"`
	Trigger   Trigger        `gorm:"column:trigger;size:16"`
	Success   bool           `gorm:"column:success"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	CreatedAt time.Time      `gorm:"column:created_at"`
}

// TableName 返回同步历史表名。
func (Run) TableName() string {
	return "sync_runs"
}
