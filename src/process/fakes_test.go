/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package process

import (
	"bpmn-token-engine/src/core/models"
	"bpmn-token-engine/src/core/types"
)

// fakeRegistry is an in-memory storage.Registry double for exercising the
// executor/event router without a real Badger instance.
type fakeRegistry struct {
	flows     map[models.FlowID]*models.FlowDefinition
	instances map[models.InstanceID]*models.InstanceState
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		flows:     make(map[models.FlowID]*models.FlowDefinition),
		instances: make(map[models.InstanceID]*models.InstanceState),
	}
}

func (f *fakeRegistry) Init() error  { return nil }
func (f *fakeRegistry) Start() error { return nil }
func (f *fakeRegistry) Stop() error  { return nil }
func (f *fakeRegistry) IsReady() bool { return true }

func (f *fakeRegistry) LoadFlow(flowID models.FlowID) (*models.FlowDefinition, error) {
	flow, ok := f.flows[flowID]
	if !ok {
		return nil, types.NewInstanceNotFoundError(flowID)
	}
	return flow, nil
}

func (f *fakeRegistry) SaveFlow(flow *models.FlowDefinition) error {
	f.flows[flow.FlowID] = flow
	return nil
}

func (f *fakeRegistry) LoadInstance(instanceID models.InstanceID) (*models.InstanceState, error) {
	instance, ok := f.instances[instanceID]
	if !ok {
		return nil, types.NewInstanceNotFoundError(instanceID)
	}
	return instance, nil
}

func (f *fakeRegistry) SaveInstance(instance *models.InstanceState) error {
	f.instances[instance.InstanceID] = instance
	return nil
}

func (f *fakeRegistry) DeleteInstance(instanceID models.InstanceID) error {
	delete(f.instances, instanceID)
	return nil
}

// fakeEvaluator is a host.ScriptEvaluator double returning configured
// per-element results instead of actually running any script.
type fakeEvaluator struct {
	results map[models.ElementIndex]types.U128
	err     error
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{results: make(map[models.ElementIndex]types.U128)}
}

func (e *fakeEvaluator) NewInstance(flowID models.FlowID, factory models.Factory) (models.InstanceHandle, error) {
	if e.err != nil {
		return models.InstanceHandle{}, e.err
	}
	return models.InstanceHandle{ContractID: "contract-" + flowID}, nil
}

func (e *fakeEvaluator) ExecuteScript(flowID models.FlowID, elementIndex models.ElementIndex, selector string) (types.U128, error) {
	if e.err != nil {
		return types.ZeroU128, e.err
	}
	return e.results[elementIndex], nil
}

// fakeSink is a host.EventSink double recording every emitted event.
type fakeSink struct {
	factorySet     []string
	newCaseCreated []string
	messagesSent   []models.EventCode
}

func newFakeSink() *fakeSink {
	return &fakeSink{}
}

func (s *fakeSink) FactorySet(flowID models.FlowID, dataHash string) {
	s.factorySet = append(s.factorySet, flowID)
}

func (s *fakeSink) NewCaseCreated(contractID string) {
	s.newCaseCreated = append(s.newCaseCreated, contractID)
}

func (s *fakeSink) MessageSent(eventCode models.EventCode) {
	s.messagesSent = append(s.messagesSent, eventCode)
}
