package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateOrReplace(t *testing.T) {
	st := NewStore()

	first := st.CreateOrReplace(10, "Ann", "Ben", LevelLight, 5, 1)
	require.Equal(t, [2]string{"Ann", "Ben"}, first.Players)
	require.Equal(t, [2]int{1, 1}, first.SkipsLeft)
	require.Equal(t, -1, first.PendingIndex)

	second := st.CreateOrReplace(10, "Kim", "Lee", LevelBold, 3, 2)
	got, ok := st.Get(10)
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, [2]string{"Kim", "Lee"}, got.Players)
	require.Equal(t, 1, st.Len())
}

func TestStoreChatIsolation(t *testing.T) {
	st := NewStore()
	a := st.CreateOrReplace(1, "Ann", "Ben", LevelLight, 5, 1)
	b := st.CreateOrReplace(2, "Kim", "Lee", LevelHot, 5, 1)

	a.History = append(a.History, QAItem{Question: "q1", Target: "Ann"})

	gotB, ok := st.Get(2)
	require.True(t, ok)
	require.Same(t, b, gotB)
	require.Empty(t, gotB.History)

	_, ok = st.Remove(1)
	require.True(t, ok)
	_, ok = st.Get(1)
	require.False(t, ok)
	_, ok = st.Get(2)
	require.True(t, ok)
}

func TestStoreRemoveAbsent(t *testing.T) {
	st := NewStore()
	s, ok := st.Remove(99)
	require.False(t, ok)
	require.Nil(t, s)
}

func TestStoreStartSetupResetsExistingGame(t *testing.T) {
	st := NewStore()
	st.CreateOrReplace(7, "Ann", "Ben", LevelBold, 5, 1)

	s := st.StartSetup(7)
	require.False(t, s.SetupComplete())
	require.Equal(t, LevelLight, s.Level)
	require.Equal(t, StatusSetup, s.Status())

	got, ok := st.Get(7)
	require.True(t, ok)
	require.Same(t, s, got)
}
