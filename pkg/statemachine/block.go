package statemachine

import (
	"time"

	"coach/pkg/protocol"
	"coach/pkg/schedule"
)

// BlockResult is the outcome of one block-transition step.
type BlockResult struct {
	State   protocol.CurrentBlockState
	Events  []protocol.Event
	Changed bool
	// Started is the block that just began, if any. The engine shows its
	// start overlay.
	Started *schedule.Block
}

// StepBlock compares the cached current block with the block resolved for
// now. A new block ends the previous one (if any) and starts the new one,
// both stamped with now. Leaving every block emits only BLOCK_END.
func StepBlock(prev protocol.CurrentBlockState, cur *schedule.Block, now time.Time) BlockResult {
	res := BlockResult{State: prev}

	if cur == nil {
		if prev.BlockID == "" {
			return res
		}
		res.Events = append(res.Events, blockEvent(protocol.EventBlockEnd, prev.BlockID, prev.BlockName, now))
		res.State = protocol.CurrentBlockState{}
		res.Changed = true
		return res
	}

	if prev.BlockID == cur.ID {
		return res
	}
	if prev.BlockID != "" {
		res.Events = append(res.Events, blockEvent(protocol.EventBlockEnd, prev.BlockID, prev.BlockName, now))
	}
	res.Events = append(res.Events, blockEvent(protocol.EventBlockStart, cur.ID, cur.Title, now))
	res.State = protocol.CurrentBlockState{
		BlockID:   cur.ID,
		BlockType: string(cur.Type),
		BlockName: cur.Title,
	}
	res.Changed = true
	started := *cur
	res.Started = &started
	return res
}

func blockEvent(typ protocol.EventType, id, name string, now time.Time) protocol.Event {
	return protocol.Event{
		TS:        protocol.At(now),
		Type:      typ,
		BlockID:   id,
		BlockName: name,
		Source:    protocol.SourceRunner,
	}
}
