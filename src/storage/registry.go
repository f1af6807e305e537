/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package storage

import "bpmn-token-engine/src/core/models"

// Registry is the two-keyed-store persistence interface from spec §6.3:
// one store keyed by FlowID holding FlowDefinition records, one keyed by
// InstanceID holding InstanceState records.
type Registry interface {
	Init() error
	Start() error
	Stop() error
	IsReady() bool

	LoadFlow(flowID models.FlowID) (*models.FlowDefinition, error)
	SaveFlow(flow *models.FlowDefinition) error

	LoadInstance(instanceID models.InstanceID) (*models.InstanceState, error)
	SaveInstance(instance *models.InstanceState) error

	DeleteInstance(instanceID models.InstanceID) error
}

// Config mirrors the teacher's Badger lifecycle configuration, narrowed to
// what a single-node embedded registry needs.
type Config struct {
	Path    string
	Options *StorageOptionsConfig
}

// StorageOptionsConfig exposes the Badger tuning knobs the teacher's
// config.yaml surface already covers.
type StorageOptionsConfig struct {
	SyncWrites       *bool
	ValueLogFileSize *int64
	Performance      *BadgerPerformanceConfig
}

// BadgerPerformanceConfig is carried over verbatim from the teacher's
// storage tuning surface. applyPerformanceOptions copies each set field to
// the badger.Options field of the same name, except that ValueCacheSize is
// written to BlockCacheSize (BlockCacheSize wins when both are set) and
// MaxTableSize, TableLoadingMode, ValueLogLoadingMode and ManageTxns are
// not applied.
type BadgerPerformanceConfig struct {
	MemTableSize            *int64
	NumMemtables            *int
	NumLevelZeroTables      *int
	NumLevelZeroTablesStall *int
	ValueCacheSize          *int64
	BlockCacheSize          *int64
	IndexCacheSize          *int64
	BaseTableSize           *int64
	MaxTableSize            *int64
	LevelSizeMultiplier     *int
	NumCompactors           *int
	CompactL0OnClose        *bool
	TableLoadingMode        *string
	ValueLogLoadingMode     *string
	BloomFalsePositive      *float64
	DetectConflicts         *bool
	ManageTxns              *bool
}
