package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelShifted(t *testing.T) {
	cases := []struct {
		from Level
		dir  Direction
		want Level
	}{
		{LevelLight, DirUp, LevelHot},
		{LevelHot, DirUp, LevelBold},
		{LevelBold, DirUp, LevelBold},
		{LevelBold, DirDown, LevelHot},
		{LevelHot, DirDown, LevelLight},
		{LevelLight, DirDown, LevelLight},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.from.Shifted(tc.dir), "%s %s", tc.from, tc.dir)
	}
}

func TestLevelShiftedUnknownDirection(t *testing.T) {
	require.Equal(t, LevelHot, LevelHot.Shifted(Direction("sideways")))
}

func TestParseLevel(t *testing.T) {
	for _, lv := range Levels() {
		got, ok := ParseLevel(string(lv))
		require.True(t, ok)
		require.Equal(t, lv, got)
	}

	got, ok := ParseLevel("nuclear")
	require.False(t, ok)
	require.Equal(t, LevelLight, got)
}

func TestLevelLabels(t *testing.T) {
	require.Equal(t, "Лайт", LevelLight.Label())
	require.Equal(t, "Горячо", LevelHot.Label())
	require.Equal(t, "Очень смело", LevelBold.Label())
	require.Equal(t, "💬", LevelLight.Emoji())
	require.Equal(t, "🔥", LevelHot.Emoji())
	require.Equal(t, "💣", LevelBold.Emoji())
}
