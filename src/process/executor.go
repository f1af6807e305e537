/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package process

import (
	"bpmn-token-engine/src/core/logger"
	"bpmn-token-engine/src/core/models"
	"bpmn-token-engine/src/core/types"
	"bpmn-token-engine/src/host"
	"bpmn-token-engine/src/metrics"
	"bpmn-token-engine/src/storage"

	"github.com/google/uuid"
)

// queueCapacity is the size of the execute_elements ring, carried over
// literally from the source's `queue: [u128; 100]`.
const queueCapacity = 100

// elementRing is the fixed-capacity wraparound queue execute_elements
// drains breadth-first. Pushing past capacity overwrites the oldest
// unconsumed entry rather than growing (spec §9 open question, resolved in
// favor of the literal 100-slot ring).
type elementRing struct {
	slots [queueCapacity]models.ElementIndex
	head  int
	tail  int
	count int
}

func (q *elementRing) push(e models.ElementIndex) {
	q.slots[q.tail] = e
	q.tail = (q.tail + 1) % queueCapacity
	if q.count < queueCapacity {
		q.count++
	} else {
		q.head = (q.head + 1) % queueCapacity
	}
}

func (q *elementRing) pop() (models.ElementIndex, bool) {
	if q.count == 0 {
		return 0, false
	}
	e := q.slots[q.head]
	q.head = (q.head + 1) % queueCapacity
	q.count--
	return e, true
}

// Executor implements spec §4.2's execute_elements BFS loop and §4.4's
// instance-creation operations.
type Executor struct {
	registry  storage.Registry
	evaluator host.ScriptEvaluator
	sink      host.EventSink
	metrics   *metrics.EngineMetrics
	router    *EventRouter
}

// NewExecutor creates an Executor. SetRouter must be called once the
// EventRouter it cooperates with has been constructed, since throw_event
// firing (spec §4.2 rule 5) routes back through it.
func NewExecutor(registry storage.Registry, evaluator host.ScriptEvaluator, sink host.EventSink, engineMetrics *metrics.EngineMetrics) *Executor {
	return &Executor{registry: registry, evaluator: evaluator, sink: sink, metrics: engineMetrics}
}

// SetRouter wires the EventRouter this Executor delegates throw_event to.
func (ex *Executor) SetRouter(router *EventRouter) {
	ex.router = router
}

// ExecuteElements implements spec §4.2: advance instanceID by BFS-consuming
// the queue seeded with seedElement.
func (ex *Executor) ExecuteElements(instanceID models.InstanceID, seedElement models.ElementIndex) error {
	instance, err := ex.registry.LoadInstance(instanceID)
	if err != nil {
		return err
	}
	flow, err := ex.registry.LoadFlow(instance.IflowNode)
	if err != nil {
		return err
	}

	pState0 := instance.TokensOnEdges
	pState1 := instance.StartedActivities

	queue := &elementRing{}
	queue.push(seedElement)
	enqueued := 1

	for {
		e, ok := queue.pop()
		if !ok {
			break
		}

		entry, ok := flow.GetElementInfo(e)
		if !ok {
			continue
		}
		typeInfo := entry.TypeInfo
		pre := entry.Pre
		post := entry.Post

		enabled := false
		switch {
		case typeInfo.HasAll(types.MaskAndJoin):
			if pState0.HasAll(pre) {
				enabled = true
				pState0 = pState0.AndNot(pre)
			}
		case typeInfo.HasAll(types.MaskOrJoin):
			// Stub: never enabled, falls through without firing.
		case typeInfo.HasAny(types.MaskActivity) ||
			(typeInfo.HasAny(types.MaskEvent) && typeInfo.HasAny(types.MaskEventTimerAttr)) ||
			typeInfo.HasAny(types.MaskGateway):
			if pState0.HasAny(pre) {
				enabled = true
				pState0 = pState0.AndNot(pre)
			}
		}

		if !enabled {
			continue
		}

		terminate := false

		switch {
		case typeInfo.HasAll(types.MaskParallelMI):
			count := flow.GetInstanceCount(e)
			for i := uint64(0); i < count.Lo; i++ {
				if err := ex.CreateInstance(e, instanceID); err != nil {
					return err
				}
			}
			// CreateInstance saved the new children on the stored record;
			// reload it so the write-back at the end keeps them.
			if instance, err = ex.registry.LoadInstance(instanceID); err != nil {
				return err
			}
			pState1 = pState1.Or(types.U128FromUint64(1).Shl(uint(e)))
			ex.recordFired("parallel_multi_instance")

		case typeInfo.HasAll(types.MaskSequentialMI) ||
			(typeInfo.HasAny(types.MaskActivity) && typeInfo.HasAny(types.MaskSubOrCallGuard) && !typeInfo.HasAny(types.MaskEventSubProcess)):
			if err := ex.CreateInstance(e, instanceID); err != nil {
				return err
			}
			if instance, err = ex.registry.LoadInstance(instanceID); err != nil {
				return err
			}
			instance.InstanceCount[e] = flow.GetInstanceCount(e)
			pState1 = pState1.Or(types.U128FromUint64(1).Shl(uint(e)))
			ex.recordFired("sequential_multi_instance_or_subprocess")

		case typeInfo.HasAll(types.MaskScriptTask) ||
			(typeInfo.And(types.MaskSplitGateway).Equal(types.MaskSplitTarget) && typeInfo.HasAny(types.MaskOrXorAttr)):
			result, err := ex.evaluator.ExecuteScript(instance.IflowNode, e, flow.Factory.ExecuteScriptSelector)
			if err != nil {
				if ex.metrics != nil {
					ex.metrics.ScriptEvaluationErrors.Inc()
				}
				return err
			}
			pState0 = pState0.Or(result)
			ex.recordFired("script_task_or_split_gateway")

		case (typeInfo.HasAll(types.MaskTaskGroup) && typeInfo.HasAny(types.MaskTaskAttrGroup)) ||
			typeInfo.HasAny(types.MaskGateway):
			pState0 = pState0.Or(post)
			ex.recordFired("task_or_and_gateway")

		case typeInfo.HasAll(types.MaskEventThrow):
			instance.TokensOnEdges = pState0
			instance.StartedActivities = pState1
			if err := ex.registry.SaveInstance(instance); err != nil {
				return err
			}

			if err := ex.router.ThrowEvent(instanceID, flow.GetEventCode(e), typeInfo); err != nil {
				return err
			}

			instance, err = ex.registry.LoadInstance(instanceID)
			if err != nil {
				return err
			}
			pState0 = instance.TokensOnEdges
			pState1 = instance.StartedActivities

			if pState0.IsZero() && pState1.IsZero() {
				terminate = true
			} else if typeInfo.HasAny(types.MaskSeqMIPending) {
				pState0 = pState0.Or(post)
			}
			ex.recordFired("throw_event")

		default:
			// No action.
		}

		if terminate {
			break
		}

		for _, next := range flow.GetAdyElements(e) {
			queue.push(next)
			enqueued++
		}
	}

	if ex.metrics != nil {
		ex.metrics.QueueDepth.Observe(float64(enqueued))
	}

	instance.TokensOnEdges = pState0
	instance.StartedActivities = pState1
	return ex.registry.SaveInstance(instance)
}

func (ex *Executor) recordFired(kind string) {
	if ex.metrics != nil {
		ex.metrics.ElementsFiredTotal.WithLabelValues(kind).Inc()
	}
	logger.Debug("element_fired", logger.String("kind", kind))
}

// CreateRootInstance implements spec §4.4's create_root_instance.
func (ex *Executor) CreateRootInstance(flowID models.FlowID) (models.InstanceID, error) {
	flow, err := ex.registry.LoadFlow(flowID)
	if err != nil {
		return "", types.NewInstanceNotFoundError(flowID)
	}

	handle, err := ex.evaluator.NewInstance(flowID, flow.Factory)
	if err != nil {
		return "", types.NewInstantiationFailureError(err.Error())
	}

	instanceID := uuid.NewString()
	instance := models.NewRootInstanceState(instanceID, flowID)
	if err := ex.registry.SaveInstance(instance); err != nil {
		return "", err
	}

	if ex.metrics != nil {
		ex.metrics.InstancesCreatedTotal.Inc()
	}
	ex.sink.NewCaseCreated(handle.ContractID)

	if err := ex.executionRequired(flow, instance); err != nil {
		return "", err
	}

	return instanceID, nil
}

// CreateInstance implements spec §4.4's create_instance.
func (ex *Executor) CreateInstance(elementIndex models.ElementIndex, parentInstanceID models.InstanceID) error {
	if parentInstanceID == "" {
		return types.NewParentIsRootError(parentInstanceID)
	}

	parent, err := ex.registry.LoadInstance(parentInstanceID)
	if err != nil {
		return err
	}

	parentFlow, err := ex.registry.LoadFlow(parent.IflowNode)
	if err != nil {
		return err
	}

	childFlowID, ok := parentFlow.GetSubProcessInstance(elementIndex)
	if !ok {
		return types.NewSubprocessToLinkNotFoundError(elementIndex)
	}

	childFlow, err := ex.registry.LoadFlow(childFlowID)
	if err != nil {
		return err
	}

	handle, err := ex.evaluator.NewInstance(childFlowID, childFlow.Factory)
	if err != nil {
		return types.NewInstantiationFailureError(err.Error())
	}

	childInstanceID := uuid.NewString()
	childInstance := models.NewChildInstanceState(childInstanceID, parentInstanceID, childFlowID, elementIndex)
	if err := ex.registry.SaveInstance(childInstance); err != nil {
		return err
	}

	parent.AddChild(elementIndex, childInstanceID)
	if err := ex.registry.SaveInstance(parent); err != nil {
		return err
	}

	if ex.metrics != nil {
		ex.metrics.InstancesCreatedTotal.Inc()
	}
	ex.sink.NewCaseCreated(handle.ContractID)

	return ex.executionRequired(childFlow, childInstance)
}

// executionRequired implements spec §4.4's execution_required.
func (ex *Executor) executionRequired(flow *models.FlowDefinition, instance *models.InstanceState) error {
	instance.TokensOnEdges = flow.GetPostCondition(flow.StartEvent)
	if err := ex.registry.SaveInstance(instance); err != nil {
		return err
	}

	firstAdjacent, ok := flow.GetFirstElem(flow.StartEvent)
	if !ok {
		return nil
	}
	return ex.ExecuteElements(instance.InstanceID, firstAdjacent)
}

// ContinueExecution implements spec §6.2 command 5: external resume after
// an off-chain User/Service/Receive task completes.
func (ex *Executor) ContinueExecution(instanceID models.InstanceID, elementIndex models.ElementIndex) error {
	return ex.ExecuteElements(instanceID, elementIndex)
}
