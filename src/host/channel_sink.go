/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package host

import "bpmn-token-engine/src/core/models"

// FactorySetEvent, NewCaseCreatedEvent and MessageSentEvent are the payloads
// delivered on ChannelEventSink's channel, one struct per emitted event kind
// named in spec §6.2.
type FactorySetEvent struct {
	FlowID   models.FlowID
	DataHash string
}

type NewCaseCreatedEvent struct {
	ContractID string
}

type MessageSentEvent struct {
	EventCode models.EventCode
}

// ChannelEventSink fans every emitted event out onto a single buffered
// channel of `any`, for hosts that want to consume events out-of-process
// (e.g. to forward them to a message broker) instead of just logging them.
type ChannelEventSink struct {
	events chan any
}

// NewChannelEventSink creates a ChannelEventSink with the given buffer
// size. A full channel drops the event rather than blocking the executor,
// consistent with spec §5's no-suspension-points rule.
func NewChannelEventSink(bufferSize int) *ChannelEventSink {
	return &ChannelEventSink{events: make(chan any, bufferSize)}
}

// Events returns the read side of the event channel.
func (s *ChannelEventSink) Events() <-chan any {
	return s.events
}

func (s *ChannelEventSink) emit(event any) {
	select {
	case s.events <- event:
	default:
	}
}

// FactorySet implements EventSink.
func (s *ChannelEventSink) FactorySet(flowID models.FlowID, dataHash string) {
	s.emit(FactorySetEvent{FlowID: flowID, DataHash: dataHash})
}

// NewCaseCreated implements EventSink.
func (s *ChannelEventSink) NewCaseCreated(contractID string) {
	s.emit(NewCaseCreatedEvent{ContractID: contractID})
}

// MessageSent implements EventSink.
func (s *ChannelEventSink) MessageSent(eventCode models.EventCode) {
	s.emit(MessageSentEvent{EventCode: eventCode})
}
