/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package storage

import (
	"errors"
	"fmt"

	"bpmn-token-engine/src/core/logger"
	"bpmn-token-engine/src/core/models"

	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned when a flow or instance key is absent.
var ErrNotFound = errors.New("registry: key not found")

const (
	flowKeyPrefix     = "flow:"
	instanceKeyPrefix = "instance:"
)

// BadgerRegistry implements Registry over a single embedded BadgerDB,
// keyed by prefixed FlowID/InstanceID strings and storing the plain JSON
// encodings of FlowDefinition/InstanceState (spec §6.3).
type BadgerRegistry struct {
	config *Config
	db     *badger.DB
	ready  bool
}

// NewBadgerRegistry creates a new registry instance.
func NewBadgerRegistry(config *Config) *BadgerRegistry {
	return &BadgerRegistry{config: config}
}

// Init initializes database connection
// Инициализирует подключение к базе данных
func (r *BadgerRegistry) Init() error {
	logger.Info("Initializing BadgerDB registry", logger.String("path", r.config.Path))

	opts := badger.DefaultOptions(r.config.Path)
	opts.Logger = nil

	r.applyPerformanceOptions(&opts)

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	r.db = db
	logger.Info("BadgerDB registry initialized successfully")
	return nil
}

// applyPerformanceOptions applies performance configuration to BadgerDB options
// Применяет настройки производительности к опциям BadgerDB
func (r *BadgerRegistry) applyPerformanceOptions(opts *badger.Options) {
	if r.config.Options == nil {
		logger.Debug("No performance options configured, using defaults")
		return
	}

	if r.config.Options.SyncWrites != nil {
		opts.SyncWrites = *r.config.Options.SyncWrites
	}
	if r.config.Options.ValueLogFileSize != nil {
		opts.ValueLogFileSize = *r.config.Options.ValueLogFileSize
	}

	if perf := r.config.Options.Performance; perf != nil {
		if perf.MemTableSize != nil {
			opts.MemTableSize = *perf.MemTableSize
		}
		if perf.NumMemtables != nil {
			opts.NumMemtables = *perf.NumMemtables
		}
		if perf.NumLevelZeroTables != nil {
			opts.NumLevelZeroTables = *perf.NumLevelZeroTables
		}
		if perf.NumLevelZeroTablesStall != nil {
			opts.NumLevelZeroTablesStall = *perf.NumLevelZeroTablesStall
		}
		if perf.ValueCacheSize != nil {
			opts.BlockCacheSize = *perf.ValueCacheSize
		}
		if perf.BlockCacheSize != nil {
			opts.BlockCacheSize = *perf.BlockCacheSize
		}
		if perf.IndexCacheSize != nil {
			opts.IndexCacheSize = *perf.IndexCacheSize
		}
		if perf.BaseTableSize != nil {
			opts.BaseTableSize = *perf.BaseTableSize
		}
		if perf.LevelSizeMultiplier != nil {
			opts.LevelSizeMultiplier = *perf.LevelSizeMultiplier
		}
		if perf.NumCompactors != nil {
			opts.NumCompactors = *perf.NumCompactors
		}
		if perf.CompactL0OnClose != nil {
			opts.CompactL0OnClose = *perf.CompactL0OnClose
		}
		if perf.BloomFalsePositive != nil {
			opts.BloomFalsePositive = *perf.BloomFalsePositive
		}
		if perf.DetectConflicts != nil {
			opts.DetectConflicts = *perf.DetectConflicts
		}
	}

	logger.Info("Performance options applied to BadgerDB registry")
}

// Start starts database
// Запускает базу данных
func (r *BadgerRegistry) Start() error {
	if r.db == nil {
		return fmt.Errorf("database not initialized")
	}
	logger.Info("Starting BadgerDB registry...")
	r.ready = true
	return nil
}

// Stop closes database connection
// Закрывает подключение к базе данных
func (r *BadgerRegistry) Stop() error {
	r.ready = false
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// IsReady returns storage ready status
// Возвращает статус готовности storage
func (r *BadgerRegistry) IsReady() bool {
	return r.ready
}

// LoadFlow looks up a FlowDefinition by FlowID.
func (r *BadgerRegistry) LoadFlow(flowID models.FlowID) (*models.FlowDefinition, error) {
	var flow *models.FlowDefinition
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(flowKeyPrefix + flowID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, decodeErr := models.FlowDefinitionFromJSON(val)
			if decodeErr != nil {
				return decodeErr
			}
			flow = decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return flow, nil
}

// SaveFlow persists a FlowDefinition.
func (r *BadgerRegistry) SaveFlow(flow *models.FlowDefinition) error {
	data, err := flow.ToJSON()
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(flowKeyPrefix+flow.FlowID), data)
	})
}

// LoadInstance looks up an InstanceState by InstanceID.
func (r *BadgerRegistry) LoadInstance(instanceID models.InstanceID) (*models.InstanceState, error) {
	var instance *models.InstanceState
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(instanceKeyPrefix + instanceID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, decodeErr := models.InstanceStateFromJSON(val)
			if decodeErr != nil {
				return decodeErr
			}
			instance = decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// SaveInstance persists an InstanceState.
func (r *BadgerRegistry) SaveInstance(instance *models.InstanceState) error {
	data, err := instance.ToJSON()
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(instanceKeyPrefix+instance.InstanceID), data)
	})
}

// DeleteInstance removes a persisted InstanceState.
func (r *BadgerRegistry) DeleteInstance(instanceID models.InstanceID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(instanceKeyPrefix + instanceID))
	})
}
