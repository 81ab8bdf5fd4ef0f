package progress

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/raidtrack/internal/tracker"
)

func TestApplyLocalChange_FillsToRequiredThenAlreadyCompleted(t *testing.T) {
	h := newHarness(t)
	h.remote.setObjectives(tracker.ObjectiveProgress{ID: "obj-ledx", Count: 3})
	h.loaded(t)

	obj, err := h.engine.ApplyLocalChange("ledx", 1)
	require.NoError(t, err)
	assert.Equal(t, "obj-ledx", obj.ObjectiveID)
	assert.Equal(t, 4, obj.CurrentCount)
	assert.Equal(t, 5, obj.RequiredCount)
	require.Len(t, h.engine.Pending(), 1)
	assert.Equal(t, 4, h.engine.Pending()[0].CurrentCount)

	obj, err = h.engine.ApplyLocalChange("ledx", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, obj.CurrentCount)

	_, err = h.engine.ApplyLocalChange("ledx", 1)
	require.ErrorIs(t, err, ErrAlreadyCompleted)
	shown, ok := ObjectiveOf(err)
	require.True(t, ok)
	assert.Equal(t, 5, shown.CurrentCount)
	assert.Equal(t, 5, h.engine.Pending()[0].CurrentCount)
}

func TestApplyLocalChange_NoObjective(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.ApplyLocalChange("ledx", 1)
	assert.ErrorIs(t, err, ErrNoObjectiveForItem, "selection needs a first refresh")

	h.loaded(t)
	cases := []struct {
		name  string
		item  string
		delta int
	}{
		{"unknown item", "nope", 1},
		{"item without tasks", "bolts", 1},
		{"zero delta", "ledx", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.engine.ApplyLocalChange(tc.item, tc.delta)
			assert.ErrorIs(t, err, ErrNoObjectiveForItem)
			assert.Empty(t, h.engine.Pending())
		})
	}
}

func TestApplyLocalChange_IncrementsEarliestDecrementsLatest(t *testing.T) {
	h := newHarness(t).loaded(t)

	steps := []struct {
		delta int
		id    string
		count int
	}{
		{1, "obj-low", 1},
		{1, "obj-low", 2},
		{1, "obj-high", 1},
		{1, "obj-high", 2},
		{-1, "obj-high", 1},
		{-1, "obj-high", 0},
		{-1, "obj-low", 1},
	}
	for i, step := range steps {
		obj, err := h.engine.ApplyLocalChange("gpu", step.delta)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.id, obj.ObjectiveID, "step %d", i)
		assert.Equal(t, step.count, obj.CurrentCount, "step %d", i)
	}
	assert.Equal(t, []string{"obj-high", "obj-low"}, pendingIDs(h.engine.Pending()))
}

func TestApplyLocalChange_SkipsRemotelyCompleted(t *testing.T) {
	t.Run("task complete", func(t *testing.T) {
		h := newHarness(t)
		h.remote.setTasks(tracker.TaskProgress{ID: "task-low", Complete: true})
		h.loaded(t)

		obj, err := h.engine.ApplyLocalChange("gpu", 1)
		require.NoError(t, err)
		assert.Equal(t, "obj-high", obj.ObjectiveID)
	})
	t.Run("objective complete", func(t *testing.T) {
		h := newHarness(t)
		h.remote.setObjectives(tracker.ObjectiveProgress{ID: "obj-low", Complete: true})
		h.loaded(t)

		obj, err := h.engine.ApplyLocalChange("gpu", 1)
		require.NoError(t, err)
		assert.Equal(t, "obj-high", obj.ObjectiveID)

		obj, err = h.engine.ApplyLocalChange("gpu", -1)
		require.NoError(t, err)
		assert.Equal(t, "obj-high", obj.ObjectiveID)
		assert.Equal(t, 0, obj.CurrentCount)
	})
}

func TestApplyLocalChange_DecrementAtZero(t *testing.T) {
	t.Run("silent no-op", func(t *testing.T) {
		h := newHarness(t).loaded(t)

		obj, err := h.engine.ApplyLocalChange("ledx", -1)
		require.NoError(t, err)
		assert.Equal(t, "obj-ledx", obj.ObjectiveID)
		assert.Equal(t, 0, obj.CurrentCount)
		assert.Empty(t, h.engine.Pending())
	})
	t.Run("strict", func(t *testing.T) {
		h := newHarness(t, func(o *Options) { o.StrictDecrement = true }).loaded(t)

		_, err := h.engine.ApplyLocalChange("ledx", -1)
		require.ErrorIs(t, err, ErrNoProgressToRemove)
		_, err = h.engine.ApplyLocalHideoutChange("bolts", -1)
		require.ErrorIs(t, err, ErrNoProgressToRemove)
		assert.Empty(t, h.engine.Pending())
	})
}

func TestApplyLocalHideoutChange_DecrementFromEmptyIsNoop(t *testing.T) {
	h := newHarness(t)

	obj, err := h.engine.ApplyLocalHideoutChange("bolts", -1)
	require.NoError(t, err)
	assert.Equal(t, "req-bolts-1", obj.ObjectiveID)
	assert.Equal(t, KindHideout, obj.Kind)
	assert.Equal(t, 0, obj.CurrentCount)
	assert.Equal(t, 10, obj.RequiredCount)
	assert.Equal(t, 0, h.engine.LocalHideoutExtraCount("req-bolts-1"))
}

func TestApplyLocalHideoutChange_StaysLocal(t *testing.T) {
	h := newHarness(t)

	obj, err := h.engine.ApplyLocalHideoutChange("bolts", 3)
	require.NoError(t, err)
	assert.Equal(t, "req-bolts-1", obj.ObjectiveID)
	assert.Equal(t, 3, obj.CurrentCount)
	assert.Equal(t, 3, h.engine.LocalHideoutExtraCount("req-bolts-1"))
	assert.Empty(t, h.engine.Pending())

	saved, err := h.store.LoadHideout()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "req-bolts-1", saved[0].RequirementID)
	assert.Equal(t, 3, saved[0].Count)
	assert.Equal(t, "Workbench", saved[0].StationName)
	assert.Equal(t, 1, saved[0].StationLevel)
	assert.Equal(t, "Bolts", saved[0].ItemName)

	obj, err = h.engine.ApplyLocalHideoutChange("bolts", 20)
	require.NoError(t, err)
	assert.Equal(t, 10, obj.CurrentCount)

	obj, err = h.engine.ApplyLocalHideoutChange("bolts", 1)
	require.NoError(t, err)
	assert.Equal(t, "req-bolts-2", obj.ObjectiveID)
	assert.Equal(t, 1, obj.CurrentCount)

	h.engine.Flush(t.Context())
	assert.Empty(t, h.remote.callIDs())
}

func TestApplyLocalHideoutChange_PrunesZeroCounts(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.ApplyLocalHideoutChange("bolts", 1)
	require.NoError(t, err)
	_, err = h.engine.ApplyLocalHideoutChange("bolts", -1)
	require.NoError(t, err)

	saved, err := h.store.LoadHideout()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestApplyLocal_ClampInvariant(t *testing.T) {
	h := newHarness(t).loaded(t)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		delta := rng.Intn(13) - 6
		item := []string{"gpu", "ledx", "wires"}[rng.Intn(3)]

		obj, err := h.engine.ApplyLocalChange(item, delta)
		if err == nil {
			assert.GreaterOrEqual(t, obj.CurrentCount, 0)
			assert.LessOrEqual(t, obj.CurrentCount, obj.RequiredCount)
		}
		hobj, err := h.engine.ApplyLocalHideoutChange("bolts", delta)
		if err == nil {
			assert.GreaterOrEqual(t, hobj.CurrentCount, 0)
			assert.LessOrEqual(t, hobj.CurrentCount, hobj.RequiredCount)
		}
		for _, p := range h.engine.Pending() {
			require.GreaterOrEqual(t, p.CurrentCount, 0)
			require.LessOrEqual(t, p.CurrentCount, p.RequiredCount)
		}
	}
}

func TestCurrentTaskObjective_IsPure(t *testing.T) {
	h := newHarness(t)
	h.remote.setObjectives(tracker.ObjectiveProgress{ID: "obj-low", Count: 1})

	_, ok := h.engine.CurrentTaskObjective("gpu")
	assert.False(t, ok)

	h.loaded(t)
	first, ok := h.engine.CurrentTaskObjective("gpu")
	require.True(t, ok)
	second, _ := h.engine.CurrentTaskObjective("gpu")
	assert.Equal(t, first, second)
	assert.Equal(t, "obj-low", first.ObjectiveID)
	assert.Equal(t, 1, first.CurrentCount)
	assert.Empty(t, h.engine.Pending())

	req, ok := h.engine.CurrentHideoutRequirement("bolts")
	require.True(t, ok)
	assert.Equal(t, "req-bolts-1", req.ObjectiveID)
}
