/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bpmn-token-engine/src/core/types"
)

func buildSampleFlow(t *testing.T) *FlowDefinition {
	t.Helper()
	f := NewFlowDefinition("flow-1")
	require.NoError(t, f.SetElement(1, types.ZeroU128, types.U128FromUint64(0b10), types.U128FromUint64(0x24), EventCode{}, []ElementIndex{2}))
	require.NoError(t, f.SetElement(2, types.U128FromUint64(0b10), types.U128FromUint64(0b100), types.U128FromUint64(0x1009), EventCode{}, []ElementIndex{3}))
	require.NoError(t, f.SetElement(3, types.U128FromUint64(0b100), types.ZeroU128, types.U128FromUint64(0x204), EventCode{}, nil))
	return f
}

// Round-trip: serialising then deserialising a FlowDefinition yields an
// equal value (spec.md §8 "Round-trips").
func TestFlowDefinition_JSONRoundTrip(t *testing.T) {
	f := buildSampleFlow(t)

	data, err := f.ToJSON()
	require.NoError(t, err)

	out, err := FlowDefinitionFromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, f.FlowID, out.FlowID)
	assert.Equal(t, f.StartEvent, out.StartEvent)
	assert.Equal(t, f.HasStart, out.HasStart)
	assert.Equal(t, f.NextElem, out.NextElem)
	for idx, entry := range f.CondTable {
		outEntry, ok := out.CondTable[idx]
		require.True(t, ok)
		assert.True(t, entry.Pre.Equal(outEntry.Pre))
		assert.True(t, entry.Post.Equal(outEntry.Post))
		assert.True(t, entry.TypeInfo.Equal(outEntry.TypeInfo))
		assert.Equal(t, entry.Kind, outEntry.Kind)
	}
}

// P4: set_element is idempotent for identical inputs and rejects type_info
// changes (spec.md §8).
func TestFlowDefinition_SetElement_Idempotent(t *testing.T) {
	f := NewFlowDefinition("flow-1")
	typeInfo := types.U128FromUint64(0x1009)

	require.NoError(t, f.SetElement(2, types.U128FromUint64(0b10), types.U128FromUint64(0b100), typeInfo, EventCode{}, []ElementIndex{3}))
	require.NoError(t, f.SetElement(2, types.U128FromUint64(0b10), types.U128FromUint64(0b100), typeInfo, EventCode{}, []ElementIndex{3}))

	assert.Len(t, f.CondTable, 1)
}

func TestFlowDefinition_SetElement_RejectsTypeInfoChange(t *testing.T) {
	f := NewFlowDefinition("flow-1")
	require.NoError(t, f.SetElement(2, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x1009), EventCode{}, nil))

	err := f.SetElement(2, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x01), EventCode{}, nil)
	require.Error(t, err)

	coreErr, ok := err.(*types.CoreError)
	require.True(t, ok)
	assert.Equal(t, types.ErrTypeMismatch, coreErr.Kind)
}

func TestFlowDefinition_LinkSubProcess_RejectsNonSubProcessParent(t *testing.T) {
	f := NewFlowDefinition("flow-1")
	require.NoError(t, f.SetElement(1, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x01), EventCode{}, nil))

	err := f.LinkSubProcess(1, "child-flow", nil, types.U128FromUint64(1))
	require.Error(t, err)

	coreErr, ok := err.(*types.CoreError)
	require.True(t, ok)
	assert.Equal(t, types.ErrSubprocessToLinkNotFound, coreErr.Kind)
}

func TestFlowDefinition_LinkSubProcess_Succeeds(t *testing.T) {
	f := NewFlowDefinition("flow-1")
	require.NoError(t, f.SetElement(4, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x21), EventCode{}, nil))

	require.NoError(t, f.LinkSubProcess(4, "child-flow", []ElementIndex{7}, types.U128FromUint64(3)))

	child, ok := f.GetSubProcessInstance(4)
	require.True(t, ok)
	assert.Equal(t, FlowID("child-flow"), child)
	assert.True(t, f.GetInstanceCount(4).Equal(types.U128FromUint64(3)))
}

func TestFlowDefinition_EventListOrdering(t *testing.T) {
	f := NewFlowDefinition("flow-1")
	require.NoError(t, f.SetElement(10, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x06), EventCode{1}, nil))
	require.NoError(t, f.SetElement(11, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x104), EventCode{1}, nil))

	assert.Equal(t, []ElementIndex{10, 11}, f.GetEventList())
}
