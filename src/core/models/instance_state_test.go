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

// Round-trip: serialising then deserialising an InstanceState yields an
// equal value (spec.md §8 "Round-trips").
func TestInstanceState_JSONRoundTrip(t *testing.T) {
	s := NewChildInstanceState("child-1", "root-1", "flow-1", 4)
	s.TokensOnEdges = types.U128FromUint64(0b110)
	s.StartedActivities = types.U128FromUint64(0b1)
	s.AddChild(4, "grandchild-1")
	s.SetRemainingInstanceCount(4, types.U128FromUint64(2))

	data, err := s.ToJSON()
	require.NoError(t, err)

	out, err := InstanceStateFromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, s.InstanceID, out.InstanceID)
	assert.Equal(t, s.IdataParent, out.IdataParent)
	assert.Equal(t, s.HasParent, out.HasParent)
	assert.Equal(t, s.IflowNode, out.IflowNode)
	assert.Equal(t, s.IndexInParent, out.IndexInParent)
	assert.True(t, s.TokensOnEdges.Equal(out.TokensOnEdges))
	assert.True(t, s.StartedActivities.Equal(out.StartedActivities))
	assert.Equal(t, s.GetChildren(4), out.GetChildren(4))
	assert.True(t, s.GetRemainingInstanceCount(4).Equal(out.GetRemainingInstanceCount(4)))
}

// P1: both markings zero implies no further firing occurs (spec.md §8).
func TestInstanceState_IsTerminated(t *testing.T) {
	s := NewRootInstanceState("root-1", "flow-1")
	assert.True(t, s.IsTerminated())

	s.TokensOnEdges = types.U128FromUint64(1)
	assert.False(t, s.IsTerminated())

	s.TokensOnEdges = types.ZeroU128
	s.StartedActivities = types.U128FromUint64(1)
	assert.False(t, s.IsTerminated())
}

func TestInstanceState_HasTokenAndIsActivityStarted(t *testing.T) {
	s := NewRootInstanceState("root-1", "flow-1")
	s.TokensOnEdges = types.U128FromUint64(0b100)
	s.StartedActivities = types.U128FromUint64(0b1)

	assert.True(t, s.HasToken(2))
	assert.False(t, s.HasToken(0))
	assert.True(t, s.IsActivityStarted(0))
	assert.False(t, s.IsActivityStarted(1))
}

// P2: children length tracks instance_count for parallel multi-instance
// activities (spec.md §8).
func TestInstanceState_AddChild_TracksCount(t *testing.T) {
	s := NewRootInstanceState("root-1", "flow-1")
	s.AddChild(5, "child-a")
	s.AddChild(5, "child-b")
	s.AddChild(5, "child-c")

	assert.Len(t, s.GetChildren(5), 3)
	assert.Equal(t, []InstanceID{"child-a", "child-b", "child-c"}, s.GetChildren(5))
	assert.True(t, s.GetRemainingInstanceCount(5).Equal(types.U128FromUint64(3)))
}

func TestNewChildInstanceState_SetsParentage(t *testing.T) {
	s := NewChildInstanceState("child-1", "root-1", "flow-2", 9)
	assert.True(t, s.HasParent)
	assert.Equal(t, InstanceID("root-1"), s.IdataParent)
	assert.Equal(t, ElementIndex(9), s.IndexInParent)
}
