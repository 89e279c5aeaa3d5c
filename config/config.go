package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/lob-engine/pkg/eventsink/postgres"
	"github.com/joripage/lob-engine/pkg/snapshotcache"
)

// AppConfig is the whole-process config for cmd/engine — symbols to
// register, how to persist/distribute events, and the FIX front door.
type AppConfig struct {
	ServiceName string `yaml:"service_name"`

	Symbols []string `yaml:"symbols"`

	// GTDScanIntervalMs controls how often ExpireDue is ticked against the
	// wall clock (§4.6 "a periodic tick"); zero means the process picks
	// its own default.
	GTDScanIntervalMs int64 `yaml:"gtd_scan_interval_ms"`

	EventsDB  *postgres.Config      `yaml:"events_db"`
	Snapshots *snapshotcache.Config `yaml:"snapshots"`
	Kafka     *KafkaConfig          `yaml:"kafka"`
	FIX       *FIXConfig            `yaml:"fix"`
}

// KafkaConfig is the producer side of pkg/eventsink/kafka.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// FIXConfig points at the quickfix acceptor settings file and an
// optional tick-size rule file consumed by pkg/riskrule.
type FIXConfig struct {
	SettingsFile   string `yaml:"settings_file"`
	TickSizeRuleFile string `yaml:"tick_size_rule_file"`
}

// Load reads AppConfig from filePath (or $CONFIG_FILE when filePath is
// empty), expanding environment variables in the file before parsing.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("loading config...")

	raw, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("failed to read config file")
		return nil, err
	}
	raw = []byte(os.ExpandEnv(string(raw)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		sugar.Error("failed to parse config file")
		return nil, err
	}

	sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}
