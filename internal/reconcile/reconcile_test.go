package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPartitionsTarget(t *testing.T) {
	existing := []uint{1, 2, 3}
	target := []Item[string]{
		Update(2, "updated-two"),
		Insert("new-one"),
		Update(1, "updated-one"),
	}

	plan, err := Build(existing, target)
	require.NoError(t, err)

	require.Equal(t, []string{"new-one"}, plan.Inserts)
	require.Len(t, plan.Updates, 2)
	require.Equal(t, uint(2), plan.Updates[0].ID)
	require.Equal(t, "updated-two", plan.Updates[0].Payload)
	require.Equal(t, uint(1), plan.Updates[1].ID)
	require.Equal(t, []uint{3}, plan.Deletes)
}

func TestBuildEmptyTargetDeletesEverything(t *testing.T) {
	plan, err := Build[string]([]uint{5, 3, 9}, nil)
	require.NoError(t, err)

	require.Empty(t, plan.Inserts)
	require.Empty(t, plan.Updates)
	require.Equal(t, []uint{3, 5, 9}, plan.Deletes, "deletions run in sorted order")
}

func TestBuildRejectsUnknownID(t *testing.T) {
	_, err := Build([]uint{1}, []Item[string]{Update(7, "ghost")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown id 7")
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	_, err := Build([]uint{1}, []Item[string]{
		Update(1, "first"),
		Update(1, "second"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "twice")
}

func TestBuildAllInsertsAgainstEmptyExisting(t *testing.T) {
	plan, err := Build(nil, []Item[int]{Insert(10), Insert(20)})
	require.NoError(t, err)
	require.Equal(t, []int{10, 20}, plan.Inserts)
	require.Empty(t, plan.Updates)
	require.Empty(t, plan.Deletes)
}
