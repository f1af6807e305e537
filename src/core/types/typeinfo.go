/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package types

// Bit positions of the type_info word (LSB = bit 0). A bit's meaning
// depends on whether the Activity/Gateway/Event bit is set alongside it —
// see the mask comments below.
const (
	BitActivity       = 0
	BitGateway        = 1
	BitEvent          = 2
	BitThrowOrSplit   = 3
	BitInterruptExcl  = 4
	BitStartOrSub     = 5
	BitParallelOrIncl = 6
	BitSeqOrInterm    = 7
	BitBoundary       = 8
	BitEnd            = 9
	BitDefault        = 10
	BitTerminateOrUsr = 11
	BitEvSubOrMsgOrScr = 12
	BitServiceOrError = 13
	BitReceive        = 14
	BitSignal         = 15
)

func bit(n uint) U128 { return U128FromUint64(1).Shl(n) }

// Masks used throughout the executor and event router (spec §4, §6.1).
// Named after the condition they test, not the bits they happen to set.
var (
	MaskAndJoin        = U128FromUint64(0x2A) // bits 1,3,5
	MaskOrJoin         = U128FromUint64(0x4A) // bits 1,3,6 — stub, never fires
	MaskActivity       = U128FromUint64(0x01)
	MaskEvent          = U128FromUint64(0x04)
	MaskEventTimerAttr = U128FromUint64(0x280) // bits 7,9
	MaskGateway        = U128FromUint64(0x02)

	MaskParallelMI  = U128FromUint64(0x41) // bits 0,6
	MaskSequentialMI = U128FromUint64(0x81) // bits 0,7
	MaskSubOrCallGuard = U128FromUint64(0x30) // bits 4,5
	MaskEventSubProcess = U128FromUint64(0x1000) // bit 12

	MaskScriptTask   = U128FromUint64(0x1009) // bits 0,3,12
	MaskSplitGateway = U128FromUint64(0x0A)   // bits 1,3
	MaskSplitTarget  = U128FromUint64(0x02)   // comparison target for split test
	MaskOrXorAttr    = U128FromUint64(0x50)   // bits 4,6

	MaskTaskGroup     = U128FromUint64(0x09)   // bits 0,3
	MaskTaskAttrGroup = U128FromUint64(0x6C09) // bits 0,3,10,11,13,14

	MaskEventThrow = U128FromUint64(0x0C) // bits 2,3

	MaskMessage         = U128FromUint64(0x1000) // bit 12
	MaskEndDefaultMsg   = U128FromUint64(0x1600) // bits 9,10,12
	MaskTerminate       = U128FromUint64(0x800)  // bit 11
	MaskErrorEnd        = U128FromUint64(0x2000) // bit 13
	MaskDefaultTermMsg  = U128FromUint64(0x1C00) // bits 10,11,12
	MaskSeqMIPending    = U128FromUint64(0x80)   // bit 7

	MaskSignal           = U128FromUint64(0x8000) // bit 15
	MaskEventSubStart    = U128FromUint64(0x06)   // bits 1,2
	MaskInterrupting     = U128FromUint64(0x10)   // bit 4
	MaskBoundary         = U128FromUint64(0x100)  // bit 8

	MaskCatchSignalGuard  = U128FromUint64(0x800C) // bits 2,3,15
	MaskCatchSignalTarget = U128FromUint64(0x8004) // bits 2,15 (bit3 clear = catch, not throw)
	MaskStartIntermSignal = U128FromUint64(0xA0)   // bits 5,7

	MaskSubProcessActivity = U128FromUint64(0x21) // bits 0,5 — 0b100001
	MaskEventStartFlag     = U128FromUint64(0x24) // bits 2,5 — 0b100100
)

// ElementKind is the decoded, tagged-variant view of a raw type_info word
// (REDESIGN FLAGS item 1). FlowDefinition.SetElement caches it alongside
// the raw U128, which remains the on-disk/wire representation. The executor
// and event router do not dispatch on it: they test the raw masks below.
type ElementKind int

const (
	KindUnknown ElementKind = iota
	KindAndJoin
	KindOrJoin
	KindParallelMultiInstance
	KindSequentialMultiInstanceOrSubProcess
	KindScriptTaskOrSplitGateway
	KindTaskOrAndGateway
	KindThrowEvent
	KindGenericGateway
	KindGenericActivity
	KindGenericEvent
)

// DecodeKind classifies a raw type_info word using the same first-match
// ordering the enablement/firing tables in spec §4.2 apply. It is a
// convenience for callers that want a coarse dispatch tag; the executor
// itself still re-checks the precise masks per spec, since several rules
// combine kind with pre/post-condition state.
func DecodeKind(info U128) ElementKind {
	switch {
	case info.HasAll(MaskAndJoin):
		return KindAndJoin
	case info.HasAll(MaskOrJoin):
		return KindOrJoin
	case info.HasAll(MaskParallelMI):
		return KindParallelMultiInstance
	case info.HasAll(MaskSequentialMI):
		return KindSequentialMultiInstanceOrSubProcess
	case info.HasAll(MaskScriptTask):
		return KindScriptTaskOrSplitGateway
	case info.HasAll(MaskEventThrow):
		return KindThrowEvent
	case info.HasAny(MaskGateway):
		return KindGenericGateway
	case info.HasAny(MaskActivity):
		return KindGenericActivity
	case info.HasAny(MaskEvent):
		return KindGenericEvent
	default:
		return KindUnknown
	}
}

// IsEvent reports whether bit 2 (Event) is set.
func IsEvent(info U128) bool { return info.HasAny(MaskEvent) }

// IsEventStart reports the combined bits-2-and-5 start-event test from
// spec §4.1 (`type_info & 0b100100 == 0b100100`).
func IsEventStart(info U128) bool { return info.HasAll(MaskEventStartFlag) }

// IsSubProcessActivity reports the combined bits-0-and-5 sub-process test
// from spec §4.1 (`type_info & 0b100001 == 0b100001`).
func IsSubProcessActivity(info U128) bool { return info.HasAll(MaskSubProcessActivity) }

var elementKindNames = map[ElementKind]string{
	KindUnknown:                             "unknown",
	KindAndJoin:                             "and_join",
	KindOrJoin:                              "or_join",
	KindParallelMultiInstance:               "parallel_multi_instance",
	KindSequentialMultiInstanceOrSubProcess: "sequential_multi_instance_or_subprocess",
	KindScriptTaskOrSplitGateway:            "script_task_or_split_gateway",
	KindTaskOrAndGateway:                    "task_or_and_gateway",
	KindThrowEvent:                          "throw_event",
	KindGenericGateway:                      "gateway",
	KindGenericActivity:                     "activity",
	KindGenericEvent:                        "event",
}

// String renders the kind's name for logging and REST inspection responses.
func (k ElementKind) String() string {
	if name, ok := elementKindNames[k]; ok {
		return name
	}
	return "unknown"
}
