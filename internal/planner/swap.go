package planner

import (
	"fmt"

	"stayflo/pkg/utils"
)

// Swap replaces the primary of blockID with its next usable alternate and
// returns a new itinerary. The input is left untouched. The old primary goes
// to the back of the alternates so repeated swaps cycle through them.
func Swap(it GeneratedItinerary, blockID string) (GeneratedItinerary, error) {
	idx := -1
	for i, b := range it.Blocks {
		if b.ID == blockID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return it, fmt.Errorf("%w: %q", utils.ErrBlockNotFound, blockID)
	}

	block := it.Blocks[idx]
	if len(block.Alternates) == 0 {
		return it, nil
	}

	used := make(map[string]struct{}, len(it.Blocks))
	for i, b := range it.Blocks {
		if i == idx || b.Primary == nil {
			continue
		}
		used[b.Primary.PlaceID] = struct{}{}
	}

	pick := 0
	for i, alt := range block.Alternates {
		if _, taken := used[alt.PlaceID]; !taken {
			pick = i
			break
		}
	}

	chosen := block.Alternates[pick]
	alternates := make([]PlaceCandidate, 0, len(block.Alternates))
	alternates = append(alternates, block.Alternates[:pick]...)
	alternates = append(alternates, block.Alternates[pick+1:]...)
	if block.Primary != nil {
		alternates = append(alternates, *block.Primary)
	}

	out := it
	out.Blocks = make([]ItineraryBlock, len(it.Blocks))
	copy(out.Blocks, it.Blocks)
	block.Primary = &chosen
	block.Alternates = alternates
	out.Blocks[idx] = block
	return out, nil
}

// UsedPrimaryIDs lists the primary place ids in block order.
func UsedPrimaryIDs(it GeneratedItinerary) []string {
	ids := make([]string, 0, len(it.Blocks))
	for _, b := range it.Blocks {
		if b.Primary != nil {
			ids = append(ids, b.Primary.PlaceID)
		}
	}
	return ids
}
