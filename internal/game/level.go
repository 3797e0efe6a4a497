package game

// Level is an intimacy tier affecting the tone of generated questions.
type Level string

const (
	LevelLight Level = "light"
	LevelHot   Level = "hot"
	LevelBold  Level = "bold"
)

type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
)

var levelOrder = []Level{LevelLight, LevelHot, LevelBold}

// Shifted returns the adjacent level in the given direction,
// saturating at the extremes.
func (l Level) Shifted(dir Direction) Level {
	idx := l.index()
	switch dir {
	case DirUp:
		if idx < len(levelOrder)-1 {
			return levelOrder[idx+1]
		}
	case DirDown:
		if idx > 0 {
			return levelOrder[idx-1]
		}
	}
	return l
}

func (l Level) index() int {
	for i, lv := range levelOrder {
		if lv == l {
			return i
		}
	}
	return 0
}

func (l Level) Label() string {
	switch l {
	case LevelHot:
		return "Горячо"
	case LevelBold:
		return "Очень смело"
	default:
		return "Лайт"
	}
}

func (l Level) Emoji() string {
	switch l {
	case LevelHot:
		return "🔥"
	case LevelBold:
		return "💣"
	default:
		return "💬"
	}
}

func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelLight, LevelHot, LevelBold:
		return Level(s), true
	}
	return LevelLight, false
}

func Levels() []Level {
	out := make([]Level, len(levelOrder))
	copy(out, levelOrder)
	return out
}
