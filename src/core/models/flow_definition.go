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

// ElementIndex identifies one node within a FlowDefinition's graph.
type ElementIndex = uint64

// FlowID identifies a FlowDefinition in the registry.
type FlowID = string

// InstanceID identifies an InstanceState in the registry.
type InstanceID = string

// EventCode is the 32-byte correlation code carried by throw/catch events.
type EventCode [32]byte

// RootInstanceParent is the sentinel idata_parent value meaning "no parent"
// (the root of a process-instance tree).
const RootInstanceParent = ""

// CondEntry is one row of FlowDefinition.CondTable: the pre/post condition
// bitmasks and the packed type_info word for a single element.
type CondEntry struct {
	Pre      types.U128 `json:"pre_condition"`
	Post     types.U128 `json:"post_condition"`
	TypeInfo types.U128 `json:"type_info"`

	// Kind is the decoded tagged-variant view of TypeInfo (REDESIGN FLAGS
	// item 1), cached here at SetElement time. It is not persisted —
	// FlowDefinitionFromJSON recomputes it from TypeInfo so old records
	// stay valid.
	Kind types.ElementKind `json:"-"`
}

// Factory is the opaque handle the host uses to materialise a fresh
// data-contract instance for a sub-process or the root flow (spec §3.1).
type Factory struct {
	DataHash             string `json:"data_hash"`
	InstanceAddress      string `json:"instance_address,omitempty"`
	InstantiateSelector  string `json:"instantiate_selector"`
	ExecuteScriptSelector string `json:"execute_script_selector"`
}

// FlowDefinition describes one immutable-after-link BPMN sub-process graph.
type FlowDefinition struct {
	FlowID     FlowID                      `json:"flow_id"`
	StartEvent ElementIndex                `json:"start_event"`
	HasStart   bool                        `json:"has_start"`
	CondTable  map[ElementIndex]*CondEntry `json:"cond_table"`
	NextElem   map[ElementIndex][]ElementIndex `json:"next_elem"`

	SubProcesses []ElementIndex `json:"subprocesses"`
	Events       []ElementIndex `json:"events"`

	AttachedTo map[ElementIndex]ElementIndex `json:"attached_to"`
	EventCode  map[ElementIndex]EventCode    `json:"event_code"`

	ParentReferences map[ElementIndex]FlowID     `json:"parent_references"`
	InstanceCount    map[ElementIndex]types.U128 `json:"instance_count"`

	Factory Factory `json:"factory"`
}

// NewFlowDefinition creates an empty flow graph, as populated by the first
// SetElement call against a fresh FlowID (spec §3.3).
func NewFlowDefinition(flowID FlowID) *FlowDefinition {
	return &FlowDefinition{
		FlowID:           flowID,
		CondTable:        make(map[ElementIndex]*CondEntry),
		NextElem:         make(map[ElementIndex][]ElementIndex),
		AttachedTo:       make(map[ElementIndex]ElementIndex),
		EventCode:        make(map[ElementIndex]EventCode),
		ParentReferences: make(map[ElementIndex]FlowID),
		InstanceCount:    make(map[ElementIndex]types.U128),
	}
}

// GetPreCondition returns the pre-condition mask for an element, or zero if
// the element is unknown.
func (f *FlowDefinition) GetPreCondition(e ElementIndex) types.U128 {
	if entry, ok := f.CondTable[e]; ok {
		return entry.Pre
	}
	return types.ZeroU128
}

// GetPostCondition returns the post-condition mask for an element, or zero
// if the element is unknown.
func (f *FlowDefinition) GetPostCondition(e ElementIndex) types.U128 {
	if entry, ok := f.CondTable[e]; ok {
		return entry.Post
	}
	return types.ZeroU128
}

// GetTypeInfo returns the type_info word for an element, or zero if the
// element is unknown.
func (f *FlowDefinition) GetTypeInfo(e ElementIndex) types.U128 {
	if entry, ok := f.CondTable[e]; ok {
		return entry.TypeInfo
	}
	return types.ZeroU128
}

// GetElementInfo returns the full CondEntry for an element.
func (f *FlowDefinition) GetElementInfo(e ElementIndex) (*CondEntry, bool) {
	entry, ok := f.CondTable[e]
	return entry, ok
}

// GetFirstElem returns the first adjacent element of e, used by event
// handlers' "first adjacent element" selection.
func (f *FlowDefinition) GetFirstElem(e ElementIndex) (ElementIndex, bool) {
	adj := f.NextElem[e]
	if len(adj) == 0 {
		return 0, false
	}
	return adj[0], true
}

// GetAdyElements returns the full adjacency list of e.
func (f *FlowDefinition) GetAdyElements(e ElementIndex) []ElementIndex {
	return f.NextElem[e]
}

// GetAttachedTo returns the host element a boundary/event-sub-process event
// is attached to.
func (f *FlowDefinition) GetAttachedTo(e ElementIndex) (ElementIndex, bool) {
	v, ok := f.AttachedTo[e]
	return v, ok
}

// GetSubProcessList returns every element flagged as a sub-process
// activity, in insertion order.
func (f *FlowDefinition) GetSubProcessList() []ElementIndex {
	return f.SubProcesses
}

// GetEventCode returns the correlation code recorded for an event element.
func (f *FlowDefinition) GetEventCode(e ElementIndex) EventCode {
	return f.EventCode[e]
}

// GetEventList returns every element flagged as an event, in insertion
// order (event-sub-process starts precede boundary events — spec §3.1).
func (f *FlowDefinition) GetEventList() []ElementIndex {
	return f.Events
}

// GetInstanceCount returns the configured/remaining instance count for an
// element (also re-purposed as a packed flag field by event handlers, see
// spec §4.3).
func (f *FlowDefinition) GetInstanceCount(e ElementIndex) types.U128 {
	return f.InstanceCount[e]
}

// GetSubProcessInstance returns the child FlowID linked to a sub-process
// element, if any.
func (f *FlowDefinition) GetSubProcessInstance(e ElementIndex) (FlowID, bool) {
	v, ok := f.ParentReferences[e]
	return v, ok
}

// SetElement implements spec §4.1's set_element mutator.
func (f *FlowDefinition) SetElement(
	e ElementIndex,
	pre, post, typeInfo types.U128,
	eventCode EventCode,
	nextElem []ElementIndex,
) error {
	if existing, ok := f.CondTable[e]; ok && !existing.TypeInfo.IsZero() {
		if !existing.TypeInfo.Equal(typeInfo) {
			return types.NewTypeMismatchError(e)
		}
	}

	if types.IsEvent(typeInfo) {
		f.Events = append(f.Events, e)
		f.EventCode[e] = eventCode
		if types.IsEventStart(typeInfo) {
			f.StartEvent = e
			f.HasStart = true
		}
	} else if types.IsSubProcessActivity(typeInfo) {
		f.SubProcesses = append(f.SubProcesses, e)
	}

	f.CondTable[e] = &CondEntry{
		Pre:      pre,
		Post:     post,
		TypeInfo: typeInfo,
		Kind:     types.DecodeKind(typeInfo),
	}
	f.NextElem[e] = nextElem

	return nil
}

// LinkSubProcess implements spec §4.1's link_sub_process mutator.
func (f *FlowDefinition) LinkSubProcess(
	parentIndex ElementIndex,
	childFlow FlowID,
	attachedEvents []ElementIndex,
	countInstances types.U128,
) error {
	parentType := f.GetTypeInfo(parentIndex)
	if !types.IsSubProcessActivity(parentType) {
		return types.NewSubprocessToLinkNotFoundError(parentIndex)
	}

	f.ParentReferences[parentIndex] = childFlow

	// The guard below is lifted verbatim from the source: it tests the
	// parent's own type_info for the Event bit, not the attached event's.
	// Preserved as written (spec §4.1).
	if types.IsEvent(parentType) {
		for _, e := range attachedEvents {
			f.AttachedTo[e] = parentIndex
		}
	}

	f.InstanceCount[parentIndex] = countInstances
	return nil
}

// ToJSON serializes the flow definition for persistence (teacher's own
// ToJSON/FromJSON convention).
func (f *FlowDefinition) ToJSON() ([]byte, error) {
	return json.Marshal(f)
}

// FlowDefinitionFromJSON deserializes a persisted flow definition and
// recomputes each entry's decoded Kind.
func FlowDefinitionFromJSON(data []byte) (*FlowDefinition, error) {
	var f FlowDefinition
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for _, entry := range f.CondTable {
		entry.Kind = types.DecodeKind(entry.TypeInfo)
	}
	return &f, nil
}
