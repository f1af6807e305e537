/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bpmn-token-engine/src/core/models"
	"bpmn-token-engine/src/core/types"
)

// Scenario 1 (spec.md §8): minimal linear flow start -> task -> end, with
// execute_script returning 0. create_root_instance must emit NewCaseCreated,
// end with tokens_on_edges == 0, and emit no MessageSent.
func TestExecuteElements_MinimalLinearFlow(t *testing.T) {
	registry := newFakeRegistry()
	evaluator := newFakeEvaluator()
	sink := newFakeSink()
	executor := NewExecutor(registry, evaluator, sink, nil)

	flow := models.NewFlowDefinition("flow-linear")
	require.NoError(t, flow.SetElement(1, types.ZeroU128, types.U128FromUint64(0b10), types.U128FromUint64(0x24), models.EventCode{}, []models.ElementIndex{2}))
	require.NoError(t, flow.SetElement(2, types.U128FromUint64(0b10), types.U128FromUint64(0b100), types.U128FromUint64(0x1009), models.EventCode{}, []models.ElementIndex{3}))
	require.NoError(t, flow.SetElement(3, types.U128FromUint64(0b100), types.ZeroU128, types.U128FromUint64(0x204), models.EventCode{}, nil))
	require.NoError(t, registry.SaveFlow(flow))

	instanceID, err := executor.CreateRootInstance("flow-linear")
	require.NoError(t, err)

	instance, err := registry.LoadInstance(instanceID)
	require.NoError(t, err)

	assert.True(t, instance.TokensOnEdges.IsZero())
	assert.Len(t, sink.newCaseCreated, 1)
	assert.Empty(t, sink.messagesSent)
}

// Scenario 2 (spec.md §8): XOR split firing ORs the script result into
// tokens_on_edges after consuming the matched pre-condition bits.
func TestExecuteElements_XORSplit(t *testing.T) {
	registry := newFakeRegistry()
	evaluator := newFakeEvaluator()
	evaluator.results[5] = types.U128FromUint64(32)
	sink := newFakeSink()
	executor := NewExecutor(registry, evaluator, sink, nil)

	flow := models.NewFlowDefinition("flow-split")
	require.NoError(t, flow.SetElement(5, types.U128FromUint64(1), types.ZeroU128, types.U128FromUint64(0x52), models.EventCode{}, nil))
	require.NoError(t, registry.SaveFlow(flow))

	instance := models.NewRootInstanceState("instance-split", "flow-split")
	instance.TokensOnEdges = types.U128FromUint64(1)
	require.NoError(t, registry.SaveInstance(instance))

	require.NoError(t, executor.ExecuteElements("instance-split", 5))

	out, err := registry.LoadInstance("instance-split")
	require.NoError(t, err)
	assert.True(t, out.TokensOnEdges.Equal(types.U128FromUint64(32)))
}

func TestExecuteElements_UnknownElementIsSkipped(t *testing.T) {
	registry := newFakeRegistry()
	evaluator := newFakeEvaluator()
	sink := newFakeSink()
	executor := NewExecutor(registry, evaluator, sink, nil)

	flow := models.NewFlowDefinition("flow-empty")
	require.NoError(t, registry.SaveFlow(flow))

	instance := models.NewRootInstanceState("instance-empty", "flow-empty")
	require.NoError(t, registry.SaveInstance(instance))

	require.NoError(t, executor.ExecuteElements("instance-empty", 42))

	out, err := registry.LoadInstance("instance-empty")
	require.NoError(t, err)
	assert.True(t, out.TokensOnEdges.IsZero())
}

func TestCreateInstance_RejectsMissingParentLink(t *testing.T) {
	registry := newFakeRegistry()
	evaluator := newFakeEvaluator()
	sink := newFakeSink()
	executor := NewExecutor(registry, evaluator, sink, nil)

	parentFlow := models.NewFlowDefinition("flow-parent")
	require.NoError(t, registry.SaveFlow(parentFlow))

	parent := models.NewRootInstanceState("instance-parent", "flow-parent")
	require.NoError(t, registry.SaveInstance(parent))

	err := executor.CreateInstance(4, "instance-parent")
	require.Error(t, err)

	coreErr, ok := err.(*types.CoreError)
	require.True(t, ok)
	assert.Equal(t, types.ErrSubprocessToLinkNotFound, coreErr.Kind)
}
