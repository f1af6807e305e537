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
	"bpmn-token-engine/src/host"
	"bpmn-token-engine/src/storage"
)

// EventRouter implements spec §4.3: throw_event/try_catch_event propagate
// linearly up the instance's ancestor chain, so they are written as a plain
// loop; broadcast_signal/kill_process fan out over a sub-tree of children,
// so they run over an explicit FIFO worklist instead of recursing (spec §5:
// "recursion is unbounded in principle... implementers must either iterate
// via an explicit worklist or bound process-tree depth").
type EventRouter struct {
	registry storage.Registry
	sink     host.EventSink
	executor *Executor
}

// NewEventRouter creates an EventRouter. SetExecutor must be called once
// the Executor it cooperates with has been constructed.
func NewEventRouter(registry storage.Registry, sink host.EventSink) *EventRouter {
	return &EventRouter{registry: registry, sink: sink}
}

// SetExecutor wires the Executor this EventRouter delegates create_instance
// and execute_elements to.
func (r *EventRouter) SetExecutor(executor *Executor) {
	r.executor = executor
}

// ThrowEvent implements spec §4.3's throw_event classifier. The "no catch
// matched, recurse throw_event(parent)" step in try_catch_event is
// expressed here as looping with curID set to the parent instead of a
// recursive call, since the chain only ever walks upward one instance at a
// time.
func (r *EventRouter) ThrowEvent(instanceID models.InstanceID, code models.EventCode, info types.U128) error {
	curID := instanceID

	for {
		instance, err := r.registry.LoadInstance(curID)
		if err != nil {
			return err
		}

		if info.HasAll(types.MaskMessage) {
			r.sink.MessageSent(code)
			return nil
		}

		var completed bool
		if info.HasAll(types.MaskEndDefaultMsg) {
			if !instance.TokensOnEdges.Or(instance.StartedActivities).IsZero() {
				return nil
			}
			completed = true
		} else {
			if info.HasAny(types.MaskTerminate) {
				if err := r.KillProcess(curID); err != nil {
					return err
				}
				instance, err = r.registry.LoadInstance(curID)
				if err != nil {
					return err
				}
			}
			completed = instance.TokensOnEdges.IsZero() && instance.StartedActivities.IsZero()
		}

		nextID, handled, err := r.tryCatchEvent(curID, code, info, completed)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
		curID = nextID
	}
}

// tryCatchEvent implements spec §4.3's try_catch_event against curID's
// parent. It returns (nextInstanceID, handled, err): handled=true means the
// event was fully resolved (or the root was reached); handled=false means
// no catch matched and the caller should continue ThrowEvent's loop with
// nextInstanceID (the parent).
func (r *EventRouter) tryCatchEvent(curID models.InstanceID, code models.EventCode, info types.U128, instanceCompleted bool) (models.InstanceID, bool, error) {
	instance, err := r.registry.LoadInstance(curID)
	if err != nil {
		return "", true, err
	}

	if !instance.HasParent {
		if info.HasAny(types.MaskErrorEnd) {
			if err := r.KillProcess(curID); err != nil {
				return "", true, err
			}
		}
		return "", true, nil
	}

	parentID := instance.IdataParent
	subIndex := instance.IndexInParent

	parent, err := r.registry.LoadInstance(parentID)
	if err != nil {
		return "", true, err
	}
	parentFlow, err := r.registry.LoadFlow(parent.IflowNode)
	if err != nil {
		return "", true, err
	}
	instanceFlow, err := r.registry.LoadFlow(instance.IflowNode)
	if err != nil {
		return "", true, err
	}

	running := parent.GetRemainingInstanceCount(subIndex)
	if instanceCompleted {
		running = running.DecrementLo()
		parent.SetRemainingInstanceCount(subIndex, running)
	}

	if running.IsZero() {
		// Verbatim clear-bit expression preserved from the source: the
		// original computes the mask as `1 << 1 << sub_index` rather than
		// `1 << sub_index` (spec §9.1).
		clearMask := types.U128FromUint64(1).Shl(1).Shl(uint(subIndex))
		parent.StartedActivities = parent.StartedActivities.AndNot(clearMask)
	}

	// Re-purposed as a packed flag field by this handler (spec §4.3).
	subInfo := instanceFlow.GetInstanceCount(subIndex)

	if info.HasAny(types.MaskDefaultTermMsg) {
		if running.IsZero() && !subInfo.HasAny(types.MaskEventSubProcess) {
			parent.TokensOnEdges = parent.TokensOnEdges.AndNot(parentFlow.GetPostCondition(subIndex))
			if err := r.registry.SaveInstance(parent); err != nil {
				return "", true, err
			}
			// Verbatim: the source keys this adjacency lookup by sub_info,
			// not sub_index (spec §9.2).
			if firstAdj, ok := parentFlow.GetFirstElem(subInfo.Lo); ok {
				if err := r.executor.ExecuteElements(parentID, firstAdj); err != nil {
					return "", true, err
				}
			}
			return "", true, nil
		}
		if subInfo.HasAny(types.MaskSeqMIPending) {
			if err := r.registry.SaveInstance(parent); err != nil {
				return "", true, err
			}
			if err := r.executor.CreateInstance(subIndex, curID); err != nil {
				return "", true, err
			}
			return "", true, nil
		}
		if err := r.registry.SaveInstance(parent); err != nil {
			return "", true, err
		}
		return "", true, nil
	}

	// Signal/Error/Escalation.
	if info.HasAny(types.MaskSignal) {
		root := instance
		rootID := curID
		for root.HasParent {
			root, err = r.registry.LoadInstance(root.IdataParent)
			if err != nil {
				return "", true, err
			}
			rootID = root.InstanceID
		}
		if err := r.BroadcastSignal(rootID); err != nil {
			return "", true, err
		}
		return "", true, nil
	}

	for _, e := range instanceFlow.GetEventList() {
		if instanceFlow.GetEventCode(e) != code {
			continue
		}
		catchInfo := instanceFlow.GetTypeInfo(e)

		if catchInfo.HasAll(types.MaskEventSubStart) {
			attachedTo, _ := instanceFlow.GetAttachedTo(e)
			if catchInfo.HasAny(types.MaskInterrupting) {
				if err := r.KillProcess(parentID); err != nil {
					return "", true, err
				}
			}
			if err := r.executor.CreateInstance(attachedTo, curID); err != nil {
				return "", true, err
			}
			parent.StartedActivities = parent.StartedActivities.Or(types.U128FromUint64(1).Shl(uint(attachedTo)))
			if err := r.registry.SaveInstance(parent); err != nil {
				return "", true, err
			}
			return "", true, nil
		}

		if catchInfo.HasAll(types.MaskBoundary) {
			attachedTo, ok := instanceFlow.GetAttachedTo(e)
			if ok && attachedTo == subIndex {
				if catchInfo.HasAny(types.MaskInterrupting) {
					if err := r.KillProcess(curID); err != nil {
						return "", true, err
					}
				}
				parent.TokensOnEdges = parent.TokensOnEdges.AndNot(instanceFlow.GetPostCondition(e))
				if err := r.registry.SaveInstance(parent); err != nil {
					return "", true, err
				}
				if firstAdj, ok := instanceFlow.GetFirstElem(e); ok {
					if err := r.executor.ExecuteElements(parentID, firstAdj); err != nil {
						return "", true, err
					}
				}
				return "", true, nil
			}
		}
	}

	if err := r.registry.SaveInstance(parent); err != nil {
		return "", true, err
	}
	return parentID, false, nil
}

// BroadcastSignal implements spec §4.3's broadcast_signal over an explicit
// FIFO worklist instead of the source's recursion over started children.
func (r *EventRouter) BroadcastSignal(instanceID models.InstanceID) error {
	worklist := []models.InstanceID{instanceID}

	for len(worklist) > 0 {
		curID := worklist[0]
		worklist = worklist[1:]

		instance, err := r.registry.LoadInstance(curID)
		if err != nil {
			return err
		}
		flow, err := r.registry.LoadFlow(instance.IflowNode)
		if err != nil {
			return err
		}

		for _, e := range flow.GetEventList() {
			typeInfo := flow.GetTypeInfo(e)
			if !typeInfo.And(types.MaskCatchSignalGuard).Equal(types.MaskCatchSignalTarget) {
				continue
			}

			switch {
			case typeInfo.HasAll(types.MaskEventSubStart):
				attachedTo, _ := flow.GetAttachedTo(e)
				if typeInfo.HasAny(types.MaskInterrupting) {
					if err := r.KillProcess(curID); err != nil {
						return err
					}
				}
				if err := r.executor.CreateInstance(attachedTo, curID); err != nil {
					return err
				}
				if instance, err = r.registry.LoadInstance(curID); err != nil {
					return err
				}
				instance.StartedActivities = types.U128FromUint64(1).Shl(uint(attachedTo))
				if err := r.registry.SaveInstance(instance); err != nil {
					return err
				}

			case typeInfo.HasAny(types.MaskBoundary):
				attachedTo, _ := flow.GetAttachedTo(e)
				if typeInfo.HasAny(types.MaskInterrupting) {
					for _, childID := range instance.GetChildren(attachedTo) {
						if err := r.KillProcess(childID); err != nil {
							return err
						}
					}
				}
				instance.TokensOnEdges = instance.TokensOnEdges.AndNot(flow.GetPostCondition(e))
				if err := r.registry.SaveInstance(instance); err != nil {
					return err
				}
				if firstAdj, ok := flow.GetFirstElem(e); ok {
					if err := r.executor.ExecuteElements(curID, firstAdj); err != nil {
						return err
					}
				}

			case typeInfo.HasAll(types.MaskStartIntermSignal):
				pre := flow.GetPreCondition(e)
				post := flow.GetPostCondition(e)
				instance.TokensOnEdges = instance.TokensOnEdges.AndNot(pre).Or(post)
				if err := r.registry.SaveInstance(instance); err != nil {
					return err
				}
				if firstAdj, ok := flow.GetFirstElem(e); ok {
					if err := r.executor.ExecuteElements(curID, firstAdj); err != nil {
						return err
					}
				}
			}
		}

		instance, err = r.registry.LoadInstance(curID)
		if err != nil {
			return err
		}
		for elementIndex, childIDs := range instance.Children {
			if instance.StartedActivities.TestBit(uint(elementIndex)) {
				worklist = append(worklist, childIDs...)
			}
		}
	}

	return nil
}

// KillProcess implements spec §4.3's kill_process over an explicit FIFO
// worklist instead of the source's recursion over started children.
func (r *EventRouter) KillProcess(instanceID models.InstanceID) error {
	worklist := []models.InstanceID{instanceID}

	for len(worklist) > 0 {
		curID := worklist[0]
		worklist = worklist[1:]

		instance, err := r.registry.LoadInstance(curID)
		if err != nil {
			return err
		}

		started := instance.StartedActivities
		instance.TokensOnEdges = types.ZeroU128
		instance.StartedActivities = types.ZeroU128
		if err := r.registry.SaveInstance(instance); err != nil {
			return err
		}

		for elementIndex, childIDs := range instance.Children {
			if started.TestBit(uint(elementIndex)) {
				worklist = append(worklist, childIDs...)
			}
		}
	}

	return nil
}
