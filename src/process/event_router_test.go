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

func newWiredEventRouter(registry *fakeRegistry, evaluator *fakeEvaluator, sink *fakeSink) *EventRouter {
	executor := NewExecutor(registry, evaluator, sink, nil)
	router := NewEventRouter(registry, sink)
	router.SetExecutor(executor)
	executor.SetRouter(router)
	return router
}

// A message throw emits MessageSent and never propagates up the ancestor
// chain (spec.md §4.3 throw_event classifier, bit 12).
func TestThrowEvent_MessageNeverPropagates(t *testing.T) {
	registry := newFakeRegistry()
	router := newWiredEventRouter(registry, newFakeEvaluator(), newFakeSink())
	sink := router.sink.(*fakeSink)

	flow := models.NewFlowDefinition("flow-msg")
	require.NoError(t, registry.SaveFlow(flow))

	instance := models.NewRootInstanceState("instance-msg", "flow-msg")
	require.NoError(t, registry.SaveInstance(instance))

	code := models.EventCode{0xAB}
	require.NoError(t, router.ThrowEvent("instance-msg", code, types.U128FromUint64(0x1000)))

	assert.Equal(t, []models.EventCode{code}, sink.messagesSent)
}

// tryCatchEvent preserves both open-question behaviours from spec.md §9
// verbatim: the double-shift clear-bit expression (§9.1, clears bit
// sub_index+1 instead of bit sub_index) and the sub_info-keyed adjacency
// lookup (§9.2, uses instance_count[sub_index] as a next_elem key instead of
// sub_index itself).
func TestTryCatchEvent_PreservesDesignNoteBugs(t *testing.T) {
	registry := newFakeRegistry()
	evaluator := newFakeEvaluator()
	sink := newFakeSink()
	router := newWiredEventRouter(registry, evaluator, sink)

	const subIndex = models.ElementIndex(4)
	const subInfoKey = uint64(77)

	childFlow := models.NewFlowDefinition("child-flow")
	require.NoError(t, registry.SaveFlow(childFlow))

	parentFlow := models.NewFlowDefinition("parent-flow")
	// Element 99 is reachable only via the buggy sub_info-keyed adjacency
	// lookup (key 77), never via the correct sub_index key (4).
	require.NoError(t, parentFlow.SetElement(99, types.U128FromUint64(0x01), types.U128FromUint64(0x40), types.U128FromUint64(0x02), models.EventCode{}, nil))
	parentFlow.NextElem[subInfoKey] = []models.ElementIndex{99}
	require.NoError(t, registry.SaveFlow(parentFlow))

	parent := models.NewRootInstanceState("parent-1", "parent-flow")
	parent.TokensOnEdges = types.U128FromUint64(0x01)
	parent.StartedActivities = types.U128FromUint64(1).Shl(uint(subIndex)).Or(types.U128FromUint64(1).Shl(uint(subIndex) + 1))
	parent.SetRemainingInstanceCount(subIndex, types.U128FromUint64(1))
	require.NoError(t, registry.SaveInstance(parent))

	child := models.NewChildInstanceState("child-1", "parent-1", "child-flow", subIndex)
	require.NoError(t, registry.SaveInstance(child))
	childFlow.InstanceCount[subIndex] = types.U128FromUint64(subInfoKey)

	info := types.U128FromUint64(0x1C00)
	_, handled, err := router.tryCatchEvent("child-1", models.EventCode{}, info, true)
	require.NoError(t, err)
	assert.True(t, handled)

	out, err := registry.LoadInstance("parent-1")
	require.NoError(t, err)

	// §9.2: reached via the sub_info key (77), not the sub_index key (4).
	assert.True(t, out.TokensOnEdges.Equal(types.U128FromUint64(0x40)), "expected sub_info-keyed adjacency lookup to fire element 99")

	// §9.1: bit sub_index+1 (5) is cleared, bit sub_index (4) survives.
	assert.True(t, out.StartedActivities.TestBit(uint(subIndex)), "bit sub_index should survive the double-shift bug")
	assert.False(t, out.StartedActivities.TestBit(uint(subIndex)+1), "bit sub_index+1 is the one actually cleared by the double-shift bug")
}

// P3 / scenario 6: kill_process zeroes both markings for the instance and
// every descendant reachable through started_activities.
func TestKillProcess_ZeroesMarkingsRecursively(t *testing.T) {
	registry := newFakeRegistry()
	router := newWiredEventRouter(registry, newFakeEvaluator(), newFakeSink())

	root := models.NewRootInstanceState("root", "flow-x")
	root.TokensOnEdges = types.U128FromUint64(0x01)
	root.StartedActivities = types.U128FromUint64(1).Shl(2)
	root.AddChild(2, "child-a")
	require.NoError(t, registry.SaveInstance(root))

	child := models.NewChildInstanceState("child-a", "root", "flow-y", 2)
	child.TokensOnEdges = types.U128FromUint64(0x04)
	child.StartedActivities = types.U128FromUint64(1).Shl(1)
	child.AddChild(1, "grandchild-a")
	require.NoError(t, registry.SaveInstance(child))

	grandchild := models.NewChildInstanceState("grandchild-a", "child-a", "flow-z", 1)
	grandchild.TokensOnEdges = types.U128FromUint64(0x08)
	require.NoError(t, registry.SaveInstance(grandchild))

	require.NoError(t, router.KillProcess("root"))

	for _, id := range []string{"root", "child-a", "grandchild-a"} {
		out, err := registry.LoadInstance(id)
		require.NoError(t, err)
		assert.True(t, out.IsTerminated(), "instance %s should be terminated", id)
	}
}

// Regression for the AddChild/instance_count join bug: a parallel
// multi-instance activity must only continue the parent flow after the Nth
// child completes, not the first (spec §3.2 invariant 4 / P2).
func TestParallelMultiInstance_JoinsOnlyAfterAllChildrenComplete(t *testing.T) {
	registry := newFakeRegistry()
	evaluator := newFakeEvaluator()
	sink := newFakeSink()
	executor := NewExecutor(registry, evaluator, sink, nil)
	router := NewEventRouter(registry, sink)
	router.SetExecutor(executor)
	executor.SetRouter(router)

	parentFlow := models.NewFlowDefinition("parent-mi")
	// 0x61 combines the parallel-MI firing bits (0,6) with the sub-process
	// bits (0,5) link_sub_process requires of its parent element.
	require.NoError(t, parentFlow.SetElement(6, types.U128FromUint64(0x01), types.ZeroU128, types.U128FromUint64(0x61), models.EventCode{}, nil))
	require.NoError(t, parentFlow.LinkSubProcess(6, "child-mi-flow", nil, types.U128FromUint64(3)))
	require.NoError(t, registry.SaveFlow(parentFlow))

	childFlow := models.NewFlowDefinition("child-mi-flow")
	require.NoError(t, registry.SaveFlow(childFlow))

	parent := models.NewRootInstanceState("parent-mi-1", "parent-mi")
	parent.TokensOnEdges = types.U128FromUint64(0x01)
	require.NoError(t, registry.SaveInstance(parent))

	require.NoError(t, executor.ExecuteElements("parent-mi-1", 6))

	out, err := registry.LoadInstance("parent-mi-1")
	require.NoError(t, err)
	childIDs := out.GetChildren(6)
	require.Len(t, childIDs, 3)
	assert.True(t, out.GetRemainingInstanceCount(6).Equal(types.U128FromUint64(3)), "instance_count should track all 3 spawned children, not stay at 0")

	for i, childID := range childIDs {
		_, _, err := router.tryCatchEvent(childID, models.EventCode{}, types.U128FromUint64(0x1C00), true)
		require.NoError(t, err)

		parentAfter, err := registry.LoadInstance("parent-mi-1")
		require.NoError(t, err)
		remaining := uint64(2 - i)
		assert.True(t, parentAfter.GetRemainingInstanceCount(6).Equal(types.U128FromUint64(remaining)), "after completion %d remaining should be %d", i+1, remaining)
	}
}

// try_catch_event's event-sub-process-start branch must create the new
// instance under the throwing instance itself (curID), not under curID's
// parent — matching create_instance(attached_to, parent_case) in the
// source, where parent_case is try_catch_event's own first argument (our
// curID), not the separately-loaded catch_case (our parentID).
func TestTryCatchEvent_EventSubProcessStart_CreatesUnderThrowingInstance(t *testing.T) {
	registry := newFakeRegistry()
	router := newWiredEventRouter(registry, newFakeEvaluator(), newFakeSink())

	code := models.EventCode{0x01}

	childFlow := models.NewFlowDefinition("child-flow")
	// Element 20 carries both the sub-process bits and the Event bit, so
	// link_sub_process's attached_to guard (the same quirk as
	// TestBroadcastSignal_InstantiatesCatchSignalStartOnce) records
	// attached_to[30].
	require.NoError(t, childFlow.SetElement(20, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x25), models.EventCode{}, nil))
	require.NoError(t, childFlow.SetElement(30, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x06), code, nil))
	require.NoError(t, childFlow.LinkSubProcess(20, "evsub-flow", []models.ElementIndex{30}, types.U128FromUint64(1)))
	require.NoError(t, registry.SaveFlow(childFlow))

	require.NoError(t, registry.SaveFlow(models.NewFlowDefinition("evsub-flow")))
	require.NoError(t, registry.SaveFlow(models.NewFlowDefinition("parent-flow")))

	parent := models.NewRootInstanceState("parent-1", "parent-flow")
	require.NoError(t, registry.SaveInstance(parent))

	child := models.NewChildInstanceState("child-1", "parent-1", "child-flow", 4)
	require.NoError(t, registry.SaveInstance(child))

	_, handled, err := router.tryCatchEvent("child-1", code, types.U128FromUint64(0x0C), false)
	require.NoError(t, err)
	assert.True(t, handled)

	childAfter, err := registry.LoadInstance("child-1")
	require.NoError(t, err)
	assert.Len(t, childAfter.GetChildren(20), 1, "event sub-process must be instantiated under the throwing instance")

	parentAfter, err := registry.LoadInstance("parent-1")
	require.NoError(t, err)
	assert.Empty(t, parentAfter.GetChildren(20), "the throwing instance's parent must not receive the new child")
	assert.True(t, parentAfter.StartedActivities.TestBit(20))
}

// try_catch_event's sequential-multi-instance-pending branch must likewise
// create the next sibling under the throwing instance (curID), mirroring
// create_instance(sub_process_index, parent_case) in the source.
func TestTryCatchEvent_SequentialMIPending_CreatesUnderThrowingInstance(t *testing.T) {
	registry := newFakeRegistry()
	router := newWiredEventRouter(registry, newFakeEvaluator(), newFakeSink())

	childFlow := models.NewFlowDefinition("child-flow")
	require.NoError(t, childFlow.SetElement(8, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x21), models.EventCode{}, nil))
	// instance_count doubles as the sequential-MI-pending flag field here
	// (bit 7, spec §4.3): setting it via link_sub_process's countInstances
	// argument is how the source reuses the same slot for both purposes.
	require.NoError(t, childFlow.LinkSubProcess(8, "child-mi-flow-next", nil, types.U128FromUint64(0x80)))
	require.NoError(t, registry.SaveFlow(childFlow))

	require.NoError(t, registry.SaveFlow(models.NewFlowDefinition("child-mi-flow-next")))
	require.NoError(t, registry.SaveFlow(models.NewFlowDefinition("parent-flow")))

	parent := models.NewRootInstanceState("parent-1", "parent-flow")
	parent.SetRemainingInstanceCount(8, types.U128FromUint64(5))
	require.NoError(t, registry.SaveInstance(parent))

	child := models.NewChildInstanceState("child-1", "parent-1", "child-flow", 8)
	require.NoError(t, registry.SaveInstance(child))

	_, handled, err := router.tryCatchEvent("child-1", models.EventCode{}, types.U128FromUint64(0x400), false)
	require.NoError(t, err)
	assert.True(t, handled)

	childAfter, err := registry.LoadInstance("child-1")
	require.NoError(t, err)
	assert.Len(t, childAfter.GetChildren(8), 1, "the next sequential sibling must be instantiated under the throwing instance")

	parentAfter, err := registry.LoadInstance("parent-1")
	require.NoError(t, err)
	assert.Empty(t, parentAfter.GetChildren(8), "the throwing instance's parent must not receive the new sibling")
}

// Scenario 4 (spec.md §8): a catch-signal start event at any reached
// instance must instantiate its event sub-process exactly once.
func TestBroadcastSignal_InstantiatesCatchSignalStartOnce(t *testing.T) {
	registry := newFakeRegistry()
	evaluator := newFakeEvaluator()
	sink := newFakeSink()
	router := newWiredEventRouter(registry, evaluator, sink)

	flow := models.NewFlowDefinition("flow-signal")
	// Catch-signal event-sub-process start: bits 1,2 (event-sub-process
	// start guard) + 2,15 (catch-signal target) + attached to element 9.
	require.NoError(t, flow.SetElement(10, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x8006), models.EventCode{}, nil))
	// link_sub_process's attached_to guard tests the parent element's own
	// Event bit (spec.md §9, the same quirk preserved verbatim in
	// FlowDefinition.LinkSubProcess), so element 9 needs both the
	// sub-process bits (0,5) and the Event bit (2) for attached_to[10] to
	// actually get recorded.
	require.NoError(t, flow.SetElement(9, types.ZeroU128, types.ZeroU128, types.U128FromUint64(0x25), models.EventCode{}, nil))
	require.NoError(t, flow.LinkSubProcess(9, "sub-flow", []models.ElementIndex{10}, types.U128FromUint64(1)))
	require.NoError(t, registry.SaveFlow(flow))

	subFlow := models.NewFlowDefinition("sub-flow")
	require.NoError(t, registry.SaveFlow(subFlow))

	root := models.NewRootInstanceState("root", "flow-signal")
	require.NoError(t, registry.SaveInstance(root))

	require.NoError(t, router.BroadcastSignal("root"))

	out, err := registry.LoadInstance("root")
	require.NoError(t, err)
	assert.Len(t, out.GetChildren(9), 1, "event sub-process should be instantiated exactly once")
	assert.True(t, out.StartedActivities.TestBit(9))
}
