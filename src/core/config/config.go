/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config holds application configuration
// Содержит конфигурацию приложения
type Config struct {
	InstanceName string         `yaml:"instance_name"` // Instance/deployment name
	BasePath     string         `yaml:"base_path"`     // Base path for all relative paths
	Database     DatabaseConfig `yaml:"database"`
	RestAPI      RestAPIConfig  `yaml:"rest_api"`
	Logger       LoggerConfig   `yaml:"logger"`
	Storage      StorageConfig  `yaml:"storage"`
	Scripting    ScriptingConfig `yaml:"scripting"`
	EventSink    EventSinkConfig `yaml:"event_sink"`
	Metrics      MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig holds database configuration
// Конфигурация базы данных
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RestAPIConfig holds REST API server configuration
// Конфигурация REST API сервера
type RestAPIConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// StorageConfig holds storage configuration
// Конфигурация хранилища
type StorageConfig struct {
	Directory string               `yaml:"directory"`
	Type      string               `yaml:"type"` // badger
	Options   StorageOptionsConfig `yaml:"options"`
}

// StorageOptionsConfig holds storage options
// Настройки опций хранилища
type StorageOptionsConfig struct {
	SyncWrites       *bool                    `yaml:"sync_writes,omitempty"`
	ValueLogFileSize *int64                   `yaml:"value_log_file_size,omitempty"`
	Performance      *BadgerPerformanceConfig `yaml:"performance,omitempty"`
}

// BadgerPerformanceConfig holds BadgerDB performance settings
// Настройки производительности BadgerDB
type BadgerPerformanceConfig struct {
	MemTableSize            *int64 `yaml:"mem_table_size,omitempty"`
	NumMemtables            *int   `yaml:"num_memtables,omitempty"`
	NumLevelZeroTables      *int   `yaml:"num_level_zero_tables,omitempty"`
	NumLevelZeroTablesStall *int   `yaml:"num_level_zero_tables_stall,omitempty"`

	ValueCacheSize *int64 `yaml:"value_cache_size,omitempty"`
	BlockCacheSize *int64 `yaml:"block_cache_size,omitempty"`
	IndexCacheSize *int64 `yaml:"index_cache_size,omitempty"`

	BaseTableSize       *int64 `yaml:"base_table_size,omitempty"`
	MaxTableSize        *int64 `yaml:"max_table_size,omitempty"`
	LevelSizeMultiplier *int   `yaml:"level_size_multiplier,omitempty"`

	NumCompactors    *int  `yaml:"num_compactors,omitempty"`
	CompactL0OnClose *bool `yaml:"compact_l0_on_close,omitempty"`

	BloomFalsePositive *float64 `yaml:"bloom_false_positive,omitempty"`
	DetectConflicts    *bool    `yaml:"detect_conflicts,omitempty"`

	MaxBatchCount *int   `yaml:"max_batch_count,omitempty"`
	MaxBatchSize  *int64 `yaml:"max_batch_size,omitempty"`
}

// LoggerConfig holds logger configuration
// Конфигурация логгера
type LoggerConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Directory     string `yaml:"directory"`
	MaxSize       int64  `yaml:"max_size"`       // Maximum size in MB
	MaxAge        int    `yaml:"max_age"`        // Maximum age in days
	MaxBackups    int    `yaml:"max_backups"`    // Maximum number of backup files
	EnableConsole bool   `yaml:"enable_console"` // Enable console output
}

// ScriptingConfig configures the host script evaluator (the "execute_script"
// collaborator, spec §1(b)).
// Конфигурация хост-интерпретатора скриптов
type ScriptingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TimeoutMs  int64  `yaml:"timeout_ms"`
	EntryPoint string `yaml:"entry_point"` // JS function name invoked per element
}

// EventSinkConfig configures the host event sink (MessageSent/NewCaseCreated,
// spec §1(c)).
type EventSinkConfig struct {
	Kind string `yaml:"kind"` // "log" or "channel"
}

// MetricsConfig configures Prometheus exposition.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoadConfig loads configuration from YAML file
// Загружает конфигурацию из YAML файла
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.BasePath == "" {
		config.BasePath = "."
	}

	setDefaults(&config)
	config.LoadFromEnv()
	resolvePaths(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// GetPIDFilePath returns the path to the PID file
// Возвращает путь к PID файлу
func (c *Config) GetPIDFilePath() string {
	return filepath.Join(c.BasePath, c.InstanceName+".pid")
}

// setDefaults sets default values for configuration
// Устанавливает значения по умолчанию для конфигурации
func setDefaults(config *Config) {
	if config.InstanceName == "" {
		config.InstanceName = "bpmn-core"
	}

	if config.RestAPI.Host == "" {
		config.RestAPI.Host = "localhost"
	}
	if config.RestAPI.Port == 0 {
		config.RestAPI.Port = 27555
	}

	if config.Database.Path == "" {
		config.Database.Path = "data/badger"
	}

	if config.Storage.Directory == "" {
		config.Storage.Directory = "storage"
	}
	if config.Storage.Type == "" {
		config.Storage.Type = "badger"
	}

	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "json"
	}
	if config.Logger.Directory == "" {
		config.Logger.Directory = "logs"
	}
	if config.Logger.MaxSize == 0 {
		config.Logger.MaxSize = 100
	}
	if config.Logger.MaxAge == 0 {
		config.Logger.MaxAge = 30
	}
	if config.Logger.MaxBackups == 0 {
		config.Logger.MaxBackups = 10
	}

	if config.Scripting.TimeoutMs == 0 {
		config.Scripting.TimeoutMs = 500
	}
	if config.Scripting.EntryPoint == "" {
		config.Scripting.EntryPoint = "evaluate"
	}

	if config.EventSink.Kind == "" {
		config.EventSink.Kind = "log"
	}

	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}
}

// resolvePaths resolves relative paths based on base path
// Разрешает относительные пути на основе базового пути
func resolvePaths(config *Config) {
	if !filepath.IsAbs(config.Database.Path) {
		config.Database.Path = filepath.Join(config.BasePath, config.Database.Path)
	}

	if !filepath.IsAbs(config.Storage.Directory) {
		config.Storage.Directory = filepath.Join(config.BasePath, config.Storage.Directory)
	}

	if !filepath.IsAbs(config.Logger.Directory) {
		config.Logger.Directory = filepath.Join(config.BasePath, config.Logger.Directory)
	}
}
