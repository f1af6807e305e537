/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package process

import (
	"fmt"
	"hash/fnv"
	"sync"

	"bpmn-token-engine/src/core/logger"
	"bpmn-token-engine/src/core/models"
	"bpmn-token-engine/src/core/types"
	"bpmn-token-engine/src/host"
	"bpmn-token-engine/src/metrics"
	"bpmn-token-engine/src/storage"
)

// lockStripes is the number of per-instance mutexes the Engine stripes
// over. Spec §5 forbids concurrent access to the same InstanceState but
// does not require a single global lock; striping on a hash of the
// instance id lets unrelated instances execute concurrently.
const lockStripes = 256

// Engine wires FlowStore, Executor and EventRouter over a shared Registry,
// and provides the five command-surface entry points from spec §6.2 behind
// per-instance mutex striping.
type Engine struct {
	registry storage.Registry
	store    *FlowStore
	executor *Executor
	router   *EventRouter

	stripes [lockStripes]sync.Mutex
}

// NewEngine creates an Engine. The registry must already be Init'd.
func NewEngine(registry storage.Registry, evaluator host.ScriptEvaluator, sink host.EventSink, engineMetrics *metrics.EngineMetrics) *Engine {
	executor := NewExecutor(registry, evaluator, sink, engineMetrics)
	router := NewEventRouter(registry, sink)
	executor.SetRouter(router)
	router.SetExecutor(executor)

	return &Engine{
		registry: registry,
		store:    NewFlowStore(registry, sink),
		executor: executor,
		router:   router,
	}
}

// Init validates the engine is ready to accept commands.
func (e *Engine) Init() error {
	logger.Info("Initializing process engine")
	if e.registry == nil {
		return fmt.Errorf("registry not provided")
	}
	logger.Info("Process engine initialized")
	return nil
}

// Start starts the process engine.
func (e *Engine) Start() error {
	logger.Info("Starting process engine")
	logger.Info("Process engine started")
	return nil
}

// Stop stops the process engine.
func (e *Engine) Stop() error {
	logger.Info("Stopping process engine")
	logger.Info("Process engine stopped")
	return nil
}

func (e *Engine) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &e.stripes[h.Sum32()%lockStripes]
}

// SetElement implements spec §6.2 command 1. FlowDefinition mutation is
// serialized per flow, matching spec §5's "must not interleave with
// execution of any instance of that flow" rule.
func (e *Engine) SetElement(
	flowID models.FlowID,
	elementIndex models.ElementIndex,
	pre, post, typeInfo types.U128,
	eventCode models.EventCode,
	nextElem []models.ElementIndex,
) error {
	lock := e.lockFor(flowID)
	lock.Lock()
	defer lock.Unlock()
	return e.store.SetElement(flowID, elementIndex, pre, post, typeInfo, eventCode, nextElem)
}

// LinkSubProcess implements spec §6.2 command 2.
func (e *Engine) LinkSubProcess(
	flowID models.FlowID,
	parentIndex models.ElementIndex,
	childFlowID models.FlowID,
	attachedEvents []models.ElementIndex,
	countInstances types.U128,
) error {
	lock := e.lockFor(flowID)
	lock.Lock()
	defer lock.Unlock()
	return e.store.LinkSubProcess(flowID, parentIndex, childFlowID, attachedEvents, countInstances)
}

// SetFactoryInstance implements spec §6.2 command 3.
func (e *Engine) SetFactoryInstance(flowID models.FlowID, dataHash, instantiateSelector, executeScriptSelector string) error {
	lock := e.lockFor(flowID)
	lock.Lock()
	defer lock.Unlock()
	return e.store.SetFactoryInstance(flowID, dataHash, instantiateSelector, executeScriptSelector)
}

// CreateRootInstance implements spec §6.2 command 4.
func (e *Engine) CreateRootInstance(flowID models.FlowID) (models.InstanceID, error) {
	lock := e.lockFor(flowID)
	lock.Lock()
	defer lock.Unlock()
	return e.executor.CreateRootInstance(flowID)
}

// ContinueExecution implements spec §6.2 command 5.
func (e *Engine) ContinueExecution(instanceID models.InstanceID, elementIndex models.ElementIndex) error {
	lock := e.lockFor(instanceID)
	lock.Lock()
	defer lock.Unlock()
	return e.executor.ContinueExecution(instanceID, elementIndex)
}

// GetFlow exposes a read-only flow lookup for the REST inspection routes.
func (e *Engine) GetFlow(flowID models.FlowID) (*models.FlowDefinition, error) {
	return e.store.GetFlow(flowID)
}

// GetInstance exposes a read-only instance lookup for the REST inspection
// routes.
func (e *Engine) GetInstance(instanceID models.InstanceID) (*models.InstanceState, error) {
	return e.registry.LoadInstance(instanceID)
}
