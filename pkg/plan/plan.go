// Package plan models the packing plan delivered by the coordination
// store and parses its wire encoding.
package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// InstanceSlot is a single assigned instance within a container.
type InstanceSlot struct {
	ComponentName  string
	GlobalTaskID   int
	ComponentIndex int
}

// PackingPlan maps container id to the ordered instances assigned to it.
// A container with no instances simply has no key in the map.
type PackingPlan map[int][]InstanceSlot

// Equal reports whether two packing plans describe the same container
// set with the same ordered instance slots. Used by the Plan Watcher to
// detect a no-op redelivery.
func (p PackingPlan) Equal(o PackingPlan) bool {
	if len(p) != len(o) {
		return false
	}
	for cid, slots := range p {
		other, ok := o[cid]
		if !ok || len(slots) != len(other) {
			return false
		}
		for i, s := range slots {
			if s != other[i] {
				return false
			}
		}
	}
	return true
}

// ParseInstanceDistribution parses the wire encoding of a packing plan's
// instance distribution: comma-separated container blocks, each block
// "cid:comp:taskid:idx:comp:taskid:idx:...". A block's triplet count
// must be a positive multiple of 3; a container with zero instances is
// simply omitted from the string rather than encoded as an empty block.
func ParseInstanceDistribution(s string) (PackingPlan, error) {
	plan := PackingPlan{}
	s = strings.TrimSpace(s)
	if s == "" {
		return plan, nil
	}

	for _, block := range strings.Split(s, ",") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		parts := strings.Split(block, ":")
		cid, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("plan: container id %q: %w", parts[0], err)
		}
		if cid < 0 {
			return nil, fmt.Errorf("plan: container id %d is negative", cid)
		}

		triplets := parts[1:]
		if len(triplets) == 0 || len(triplets)%3 != 0 {
			return nil, fmt.Errorf("plan: container %d has %d triplet fields, want a positive multiple of 3", cid, len(triplets))
		}

		slots := make([]InstanceSlot, 0, len(triplets)/3)
		for i := 0; i < len(triplets); i += 3 {
			taskID, err := strconv.Atoi(triplets[i+1])
			if err != nil {
				return nil, fmt.Errorf("plan: container %d global task id %q: %w", cid, triplets[i+1], err)
			}
			idx, err := strconv.Atoi(triplets[i+2])
			if err != nil {
				return nil, fmt.Errorf("plan: container %d component index %q: %w", cid, triplets[i+2], err)
			}
			slots = append(slots, InstanceSlot{
				ComponentName:  triplets[i],
				GlobalTaskID:   taskID,
				ComponentIndex: idx,
			})
		}

		plan[cid] = slots
	}

	return plan, nil
}
