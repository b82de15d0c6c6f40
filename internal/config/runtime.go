package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// ModeBridge 表示从设备侧 Health Bridge 读取真实健康数据。
	ModeBridge = "bridge"
	// ModeSimulated 表示使用内置的模拟数据源，便于离线开发与演示。
	ModeSimulated = "simulated"

	defaultDBRelPath    = "data/companion-local.db"
	defaultAgentPort    = "4317"
	defaultBridgeURL    = "http://127.0.0.1:4727"
	defaultSyncInterval = 15 * time.Minute
	defaultProbePeriod  = 30 * time.Second
	defaultProbeTimeout = 3 * time.Second

	defaultServerIP     = "192.168.9.20"
	defaultFrontendPort = "8080"
	defaultBackendPort  = "8000"
)

// SeedSettings 描述首次启动时写入本地同步状态的默认字段。
type SeedSettings struct {
	ServerIP     string
	FrontendPort string
	BackendPort  string
	Token        string
	AutoSync     bool
}

// RuntimeFlags 汇总运行期所需的模式、路径与周期配置。
type RuntimeFlags struct {
	Mode          string
	DBPath        string
	AgentPort     string
	ControlToken  string
	BridgeURL     string
	SyncInterval  time.Duration
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
	Seed          SeedSettings
}

// LoadRuntimeFlags 读取环境变量，推导运行模式、数据路径与各组件的周期参数。
func LoadRuntimeFlags() RuntimeFlags {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("APP_MODE")))
	if mode == "" {
		mode = ModeBridge
	}

	flags := RuntimeFlags{
		Mode:          mode,
		DBPath:        normalisePath(defaultDBRelPath),
		AgentPort:     defaultAgentPort,
		ControlToken:  strings.TrimSpace(os.Getenv("AGENT_CONTROL_TOKEN")),
		BridgeURL:     defaultBridgeURL,
		SyncInterval:  defaultSyncInterval,
		ProbeInterval: defaultProbePeriod,
		ProbeTimeout:  defaultProbeTimeout,
		Seed: SeedSettings{
			ServerIP:     defaultServerIP,
			FrontendPort: defaultFrontendPort,
			BackendPort:  defaultBackendPort,
			Token:        strings.TrimSpace(os.Getenv("HEALTH_API_TOKEN")),
			AutoSync:     false,
		},
	}

	if rawPath := strings.TrimSpace(os.Getenv("LOCAL_SQLITE_PATH")); rawPath != "" {
		flags.DBPath = normalisePath(rawPath)
	}
	if rawPort := strings.TrimSpace(os.Getenv("AGENT_PORT")); rawPort != "" {
		flags.AgentPort = rawPort
	}
	if rawURL := strings.TrimSpace(os.Getenv("HEALTH_BRIDGE_URL")); rawURL != "" {
		flags.BridgeURL = strings.TrimRight(rawURL, "/")
	}
	if d := parseDurationEnv("SYNC_INTERVAL"); d > 0 {
		flags.SyncInterval = d
	}
	if d := parseDurationEnv("PROBE_INTERVAL"); d > 0 {
		flags.ProbeInterval = d
	}
	if d := parseDurationEnv("PROBE_TIMEOUT"); d > 0 {
		flags.ProbeTimeout = d
	}

	if rawIP := strings.TrimSpace(os.Getenv("HEALTH_SERVER_IP")); rawIP != "" {
		flags.Seed.ServerIP = rawIP
	}
	if rawPort := strings.TrimSpace(os.Getenv("HEALTH_FRONTEND_PORT")); rawPort != "" {
		flags.Seed.FrontendPort = rawPort
	}
	if rawPort := strings.TrimSpace(os.Getenv("HEALTH_BACKEND_PORT")); rawPort != "" {
		flags.Seed.BackendPort = rawPort
	}
	if rawAuto := strings.TrimSpace(os.Getenv("HEALTH_AUTO_SYNC")); rawAuto != "" {
		if parsed, err := strconv.ParseBool(rawAuto); err == nil {
			flags.Seed.AutoSync = parsed
		}
	}

	return flags
}

// parseDurationEnv 解析形如 "30s"、"15m" 的周期配置，非法值返回 0 交由调用方回退默认。
func parseDurationEnv(key string) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return parsed
}

// normalisePath 将路径展开为绝对路径，兼容 ~ 前缀与相对路径。
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
