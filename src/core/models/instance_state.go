/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import (
	"encoding/json"

	"bpmn-token-engine/src/core/types"
)

// InstanceState is the mutable per-instance record that tracks token
// position for one running (or terminated) process/sub-process instance
// (spec §3.1).
type InstanceState struct {
	InstanceID InstanceID `json:"instance_id"`

	TokensOnEdges     types.U128 `json:"tokens_on_edges"`
	StartedActivities types.U128 `json:"started_activities"`

	IdataParent   InstanceID    `json:"idata_parent,omitempty"`
	HasParent     bool          `json:"has_parent"`
	IflowNode     FlowID        `json:"iflow_node"`
	IndexInParent ElementIndex  `json:"index_in_parent"`

	Children      map[ElementIndex][]InstanceID `json:"children"`
	InstanceCount map[ElementIndex]types.U128   `json:"instance_count"`
}

// NewRootInstanceState creates the InstanceState for a process root
// (idata_parent absent, index_in_parent unused — spec §4.4's
// create_root_instance).
func NewRootInstanceState(instanceID InstanceID, flowID FlowID) *InstanceState {
	return &InstanceState{
		InstanceID:    instanceID,
		IflowNode:     flowID,
		HasParent:     false,
		Children:      make(map[ElementIndex][]InstanceID),
		InstanceCount: make(map[ElementIndex]types.U128),
	}
}

// NewChildInstanceState creates the InstanceState for a sub-process instance
// spawned from a parent activity (spec §4.4's create_instance).
func NewChildInstanceState(instanceID, parentID InstanceID, flowID FlowID, indexInParent ElementIndex) *InstanceState {
	return &InstanceState{
		InstanceID:    instanceID,
		IflowNode:     flowID,
		IdataParent:   parentID,
		HasParent:     true,
		IndexInParent: indexInParent,
		Children:      make(map[ElementIndex][]InstanceID),
		InstanceCount: make(map[ElementIndex]types.U128),
	}
}

// IsTerminated reports invariant 5 from spec §3.2: both markings are zero,
// so no further firing can occur until the parent re-seeds this instance.
func (s *InstanceState) IsTerminated() bool {
	return s.TokensOnEdges.IsZero() && s.StartedActivities.IsZero()
}

// HasToken reports whether a given edge bit is currently marked.
func (s *InstanceState) HasToken(edgeBit uint) bool {
	return s.TokensOnEdges.TestBit(edgeBit)
}

// IsActivityStarted reports whether a given activity bit is currently
// marked as started (awaiting completion, e.g. a sub-process or a
// multi-instance activity pending children).
func (s *InstanceState) IsActivityStarted(activityBit uint) bool {
	return s.StartedActivities.TestBit(activityBit)
}

// AddChild records a newly created child instance under a parent element,
// maintaining invariant 4 from spec §3.2 (children length tracks
// instance_count).
func (s *InstanceState) AddChild(elementIndex ElementIndex, childID InstanceID) {
	s.Children[elementIndex] = append(s.Children[elementIndex], childID)
	s.InstanceCount[elementIndex] = s.InstanceCount[elementIndex].IncrementLo()
}

// GetChildren returns the recorded children spawned from a given element.
func (s *InstanceState) GetChildren(elementIndex ElementIndex) []InstanceID {
	return s.Children[elementIndex]
}

// GetRemainingInstanceCount returns the remaining pending-instantiation
// count for a sequential multi-instance activity.
func (s *InstanceState) GetRemainingInstanceCount(elementIndex ElementIndex) types.U128 {
	return s.InstanceCount[elementIndex]
}

// SetRemainingInstanceCount updates the remaining pending-instantiation
// count for a sequential multi-instance activity.
func (s *InstanceState) SetRemainingInstanceCount(elementIndex ElementIndex, count types.U128) {
	s.InstanceCount[elementIndex] = count
}

// ToJSON serializes the instance state for persistence.
func (s *InstanceState) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// InstanceStateFromJSON deserializes a persisted instance state.
func InstanceStateFromJSON(data []byte) (*InstanceState, error) {
	var s InstanceState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Children == nil {
		s.Children = make(map[ElementIndex][]InstanceID)
	}
	if s.InstanceCount == nil {
		s.InstanceCount = make(map[ElementIndex]types.U128)
	}
	return &s, nil
}
