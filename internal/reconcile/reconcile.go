// Package reconcile converges a persisted keyed collection to a caller
// supplied target list. Target entries carrying an id update the matching
// row, entries without one are inserted, and persisted rows absent from
// the target are deleted. Both the roster (group modules) and the rubric
// criteria paths run on this one primitive.
package reconcile

import (
	"fmt"
	"sort"
)

// Item is one target entry: an update when ID is set, an insert otherwise.
// The boundary layer resolves the "is the id present" question once, here,
// instead of scattering it through the algorithm.
type Item[P any] struct {
	ID      *uint
	Payload P
}

// Insert builds an insert item.
func Insert[P any](payload P) Item[P] {
	return Item[P]{Payload: payload}
}

// Update builds an update item targeting an existing row.
func Update[P any](id uint, payload P) Item[P] {
	return Item[P]{ID: &id, Payload: payload}
}

// Plan is the computed set of operations that converges the existing rows
// to the target list. Updates preserves target order; DeleteIDs is sorted
// so deletions run in a stable order.
type Plan[P any] struct {
	Inserts []P
	Updates []UpdateOp[P]
	Deletes []uint
}

// UpdateOp pairs an existing row id with its replacement payload.
type UpdateOp[P any] struct {
	ID      uint
	Payload P
}

// Build partitions target against the ids of the existing rows. A target
// entry referencing an id that is not among existingIDs, or the same id
// twice, is an error: the caller rejects the whole operation before
// mutating anything.
func Build[P any](existingIDs []uint, target []Item[P]) (Plan[P], error) {
	existing := make(map[uint]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	var plan Plan[P]
	seen := make(map[uint]struct{}, len(target))

	for _, item := range target {
		if item.ID == nil {
			plan.Inserts = append(plan.Inserts, item.Payload)
			continue
		}

		id := *item.ID
		if _, ok := existing[id]; !ok {
			return Plan[P]{}, fmt.Errorf("target references unknown id %d", id)
		}
		if _, dup := seen[id]; dup {
			return Plan[P]{}, fmt.Errorf("target references id %d twice", id)
		}
		seen[id] = struct{}{}
		plan.Updates = append(plan.Updates, UpdateOp[P]{ID: id, Payload: item.Payload})
	}

	for _, id := range existingIDs {
		if _, kept := seen[id]; !kept {
			plan.Deletes = append(plan.Deletes, id)
		}
	}
	sort.Slice(plan.Deletes, func(i, j int) bool { return plan.Deletes[i] < plan.Deletes[j] })

	return plan, nil
}
