package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixedChance pins the probabilistic level shift for deterministic tests.
type fixedChance struct{ outcome bool }

func (c fixedChance) Roll(float64) bool { return c.outcome }

func newTestEngine(t *testing.T, chance Chance) (*Engine, *manualClock) {
	t.Helper()
	e := NewEngine(NewStore(), chance, Config{})
	clock := &manualClock{}
	e.sched.after = clock.after
	return e, clock
}

func mustCreate(t *testing.T, e *Engine, chatID int64, maxQuestions int) {
	t.Helper()
	_, err := e.CreateSession(chatID, "Ann", "Ben", LevelLight, maxQuestions)
	require.NoError(t, err)
}

func TestFullGameScenario(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{true})
	mustCreate(t, e, 1, 2)

	s, err := e.IssueQuestion(1, "Первый вопрос?")
	require.NoError(t, err)
	require.Equal(t, StatusAwaitingAnswer, s.Status())
	require.Equal(t, 0, s.Turn)
	require.Equal(t, "Ann", s.History[0].Target)
	require.Equal(t, 1, s.QuestionsAsked)

	res, err := e.RecordAnswer(1, "да")
	require.NoError(t, err)
	require.Equal(t, LevelHot, res.Session.Level)
	require.True(t, res.LevelChanged)
	require.Equal(t, 1, res.Session.Turn)
	require.Equal(t, StatusAwaitingQuestion, res.Session.Status())
	require.False(t, res.Finished)

	s, err = e.IssueQuestion(1, "Второй вопрос?")
	require.NoError(t, err)
	require.Equal(t, 1, s.Turn)
	require.Equal(t, "Ben", s.History[1].Target)
	require.Equal(t, StatusAwaitingAnswer, s.Status())

	res, err = e.RecordAnswer(1, "нет")
	require.NoError(t, err)
	require.Equal(t, 0, res.Session.Turn)
	require.Equal(t, 2, res.Session.QuestionsAsked)
	require.True(t, res.Finished)
	require.Equal(t, StatusFinished, res.Session.Status())

	final, err := e.Finish(1)
	require.NoError(t, err)
	require.Len(t, final.History, 2)
	for _, item := range final.History {
		require.True(t, item.Answered())
		require.False(t, item.Skipped)
	}

	_, ok := e.Session(1)
	require.False(t, ok)
}

func TestTurnAlternation(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	mustCreate(t, e, 1, 10)

	want := 0
	for i := 0; i < 6; i++ {
		s, err := e.IssueQuestion(1, "вопрос?")
		require.NoError(t, err)
		require.Equal(t, want, s.Turn)

		var res *AnswerResult
		if i == 2 {
			res, err = e.RecordSkip(1)
		} else {
			res, err = e.RecordAnswer(1, "слово")
		}
		require.NoError(t, err)
		want = 1 - want
		require.Equal(t, want, res.Session.Turn)
	}
}

func TestWaitingFlagMatchesHistory(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	mustCreate(t, e, 1, 10)

	require.False(t, e.IsWaitingForAnswer(1))

	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	s, ok := e.Session(1)
	require.True(t, ok)
	require.True(t, s.WaitingForAnswer)
	require.False(t, s.History[len(s.History)-1].Answered())

	_, err = e.RecordAnswer(1, "да")
	require.NoError(t, err)

	s, _ = e.Session(1)
	require.False(t, s.WaitingForAnswer)
	require.True(t, s.History[len(s.History)-1].Answered())
}

func TestAnswerValidation(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	mustCreate(t, e, 1, 10)

	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	_, err = e.RecordAnswer(1, "это слишком длинный ответ честно")
	require.ErrorIs(t, err, ErrAnswerTooLong)

	// Rejection does not advance state: same question still pending.
	s, _ := e.Session(1)
	require.True(t, s.WaitingForAnswer)
	require.Equal(t, 0, s.Turn)
	require.False(t, s.History[0].Answered())

	res, err := e.RecordAnswer(1, "ровно три слова")
	require.NoError(t, err)
	require.Equal(t, "ровно три слова", res.Item.Answer)
}

func TestEmptyAnswerCountsAsMedia(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{true})
	mustCreate(t, e, 1, 10)

	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	res, err := e.RecordAnswer(1, "   ")
	require.NoError(t, err)
	require.Equal(t, MediaAnswer, res.Item.Answer)
	// Media answers never shift the level.
	require.False(t, res.LevelChanged)
}

func TestSkipBudget(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	mustCreate(t, e, 1, 10)

	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	res, err := e.RecordSkip(1)
	require.NoError(t, err)
	require.Equal(t, 0, res.Session.SkipsLeft[0])
	require.True(t, res.Item.Skipped)
	require.Equal(t, SkipAnswer, res.Item.Answer)

	// Ben answers, turn comes back to Ann who has no skips left.
	_, err = e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)
	_, err = e.RecordAnswer(1, "да")
	require.NoError(t, err)

	_, err = e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)
	before, _ := e.Session(1)

	_, err = e.RecordSkip(1)
	require.ErrorIs(t, err, ErrNoSkipsLeft)

	after, _ := e.Session(1)
	require.Equal(t, before.Turn, after.Turn)
	require.Equal(t, before.SkipsLeft, after.SkipsLeft)
	require.Equal(t, len(before.History), len(after.History))
	require.True(t, after.WaitingForAnswer)
}

func TestInvalidTransitions(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})

	_, err := e.IssueQuestion(404, "вопрос?")
	require.ErrorIs(t, err, ErrNoActiveSession)
	_, err = e.RecordAnswer(404, "да")
	require.ErrorIs(t, err, ErrNoActiveSession)
	_, err = e.RecordSkip(404)
	require.ErrorIs(t, err, ErrNoActiveSession)
	_, err = e.Finish(404)
	require.ErrorIs(t, err, ErrNoActiveSession)

	mustCreate(t, e, 1, 2)

	_, err = e.RecordAnswer(1, "да")
	require.ErrorIs(t, err, ErrNoQuestionPending)
	_, err = e.RecordSkip(1)
	require.ErrorIs(t, err, ErrNoQuestionPending)

	_, err = e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)
	_, err = e.IssueQuestion(1, "ещё вопрос?")
	require.ErrorIs(t, err, ErrQuestionPending)

	_, err = e.RecordAnswer(1, "да")
	require.NoError(t, err)
	_, err = e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)
	_, err = e.RecordAnswer(1, "нет")
	require.NoError(t, err)

	// Question budget spent.
	_, err = e.IssueQuestion(1, "вопрос?")
	require.ErrorIs(t, err, ErrSessionFinished)
}

func TestIssueQuestionDuringSetup(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	e.StartSetup(1)

	_, err := e.IssueQuestion(1, "вопрос?")
	require.ErrorIs(t, err, ErrSetupIncomplete)
}

func TestCreateSessionValidation(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})

	_, err := e.CreateSession(1, "", "Ben", LevelLight, 5)
	require.ErrorIs(t, err, ErrSetupIncomplete)
	_, err = e.CreateSession(1, "Ann", "   ", LevelLight, 5)
	require.ErrorIs(t, err, ErrSetupIncomplete)

	s, err := e.CreateSession(1, "Ann", "Ben", LevelHot, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxQuestions, s.MaxQuestions)
}

func TestCreateSessionReplacesPrevious(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	mustCreate(t, e, 1, 10)
	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	s, err := e.CreateSession(1, "Kim", "Lee", LevelBold, 5)
	require.NoError(t, err)
	require.Empty(t, s.History)
	require.False(t, s.WaitingForAnswer)
	require.Equal(t, [2]string{"Kim", "Lee"}, s.Players)
}

func TestLevelAutoAdjust(t *testing.T) {
	t.Run("affirmative raises with chance pinned true", func(t *testing.T) {
		e, _ := newTestEngine(t, fixedChance{true})
		mustCreate(t, e, 1, 10)
		_, err := e.IssueQuestion(1, "вопрос?")
		require.NoError(t, err)
		res, err := e.RecordAnswer(1, "Да, конечно")
		require.NoError(t, err)
		require.Equal(t, LevelHot, res.NewLevel)
		require.True(t, res.LevelChanged)
	})

	t.Run("affirmative never raises with chance pinned false", func(t *testing.T) {
		e, _ := newTestEngine(t, fixedChance{false})
		mustCreate(t, e, 1, 10)
		_, err := e.IssueQuestion(1, "вопрос?")
		require.NoError(t, err)
		res, err := e.RecordAnswer(1, "да")
		require.NoError(t, err)
		require.Equal(t, LevelLight, res.NewLevel)
		require.False(t, res.LevelChanged)
	})

	t.Run("negative lowers with chance pinned true", func(t *testing.T) {
		e, _ := newTestEngine(t, fixedChance{true})
		_, err := e.CreateSession(1, "Ann", "Ben", LevelBold, 10)
		require.NoError(t, err)
		_, err = e.IssueQuestion(1, "вопрос?")
		require.NoError(t, err)
		res, err := e.RecordAnswer(1, "нет")
		require.NoError(t, err)
		require.Equal(t, LevelHot, res.NewLevel)
	})

	t.Run("neutral answer leaves level unchanged", func(t *testing.T) {
		e, _ := newTestEngine(t, fixedChance{true})
		mustCreate(t, e, 1, 10)
		_, err := e.IssueQuestion(1, "вопрос?")
		require.NoError(t, err)
		res, err := e.RecordAnswer(1, "может быть")
		require.NoError(t, err)
		require.False(t, res.LevelChanged)
	})

	t.Run("clamped at the top tier", func(t *testing.T) {
		e, _ := newTestEngine(t, fixedChance{true})
		_, err := e.CreateSession(1, "Ann", "Ben", LevelBold, 10)
		require.NoError(t, err)
		_, err = e.IssueQuestion(1, "вопрос?")
		require.NoError(t, err)
		res, err := e.RecordAnswer(1, "да")
		require.NoError(t, err)
		require.Equal(t, LevelBold, res.NewLevel)
		require.False(t, res.LevelChanged)
	})
}

func TestAdjustLevel(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	mustCreate(t, e, 1, 10)

	s, err := e.AdjustLevel(1, DirUp)
	require.NoError(t, err)
	require.Equal(t, LevelHot, s.Level)

	// Saturates, does not wrap.
	_, err = e.AdjustLevel(1, DirUp)
	require.NoError(t, err)

	s, err = e.AdjustLevel(1, DirUp)
	require.NoError(t, err)
	require.Equal(t, LevelBold, s.Level)

	// Pending state untouched.
	_, err = e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)
	s, err = e.AdjustLevel(1, DirDown)
	require.NoError(t, err)
	require.Equal(t, LevelHot, s.Level)
	require.True(t, s.WaitingForAnswer)
	require.Equal(t, 0, s.Turn)

	_, err = e.AdjustLevel(404, DirUp)
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestReminderFiresForPendingQuestion(t *testing.T) {
	e, clock := newTestEngine(t, fixedChance{false})

	type remindCall struct {
		chatID int64
		item   QAItem
		player string
	}
	var calls []remindCall
	e.SetReminderFunc(func(chatID int64, item QAItem, player string) {
		calls = append(calls, remindCall{chatID, item, player})
	})

	mustCreate(t, e, 1, 10)
	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	clock.fire(0)
	require.Len(t, calls, 1)
	require.Equal(t, int64(1), calls[0].chatID)
	require.Equal(t, "вопрос?", calls[0].item.Question)
	require.Equal(t, "Ann", calls[0].player)
}

func TestReminderSuppressedAfterAnswer(t *testing.T) {
	e, clock := newTestEngine(t, fixedChance{false})
	calls := 0
	e.SetReminderFunc(func(int64, QAItem, string) { calls++ })

	mustCreate(t, e, 1, 10)
	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	// Grab the raw callback to simulate a timer already mid-fire when the
	// answer lands.
	stale := clock.timers[0].fn

	_, err = e.RecordAnswer(1, "да")
	require.NoError(t, err)

	clock.fire(0)
	stale()
	require.Zero(t, calls)
}

func TestReminderSuppressedAfterFinish(t *testing.T) {
	e, clock := newTestEngine(t, fixedChance{false})
	calls := 0
	e.SetReminderFunc(func(int64, QAItem, string) { calls++ })

	mustCreate(t, e, 1, 10)
	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	_, err = e.Finish(1)
	require.NoError(t, err)

	clock.fire(0)
	require.Zero(t, calls)
}

func TestRejectedAnswerKeepsTimerArmed(t *testing.T) {
	e, clock := newTestEngine(t, fixedChance{false})
	calls := 0
	e.SetReminderFunc(func(int64, QAItem, string) { calls++ })

	mustCreate(t, e, 1, 10)
	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)

	_, err = e.RecordAnswer(1, "четыре слова тут лишние")
	require.ErrorIs(t, err, ErrAnswerTooLong)

	clock.fire(0)
	require.Equal(t, 1, calls)
}

func TestCrossChatIndependence(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})
	mustCreate(t, e, 1, 10)
	_, err := e.CreateSession(2, "Kim", "Lee", LevelHot, 3)
	require.NoError(t, err)

	_, err = e.IssueQuestion(1, "вопрос для первого чата?")
	require.NoError(t, err)

	s2, ok := e.Session(2)
	require.True(t, ok)
	require.Empty(t, s2.History)
	require.False(t, e.IsWaitingForAnswer(2))
	require.True(t, e.IsWaitingForAnswer(1))

	require.Len(t, e.ActiveSessions(), 2)

	_, err = e.Finish(2)
	require.NoError(t, err)
	require.Len(t, e.ActiveSessions(), 1)
}

func TestCurrentPlayer(t *testing.T) {
	e, _ := newTestEngine(t, fixedChance{false})

	_, ok := e.CurrentPlayer(1)
	require.False(t, ok)

	e.StartSetup(1)
	_, ok = e.CurrentPlayer(1)
	require.False(t, ok)

	mustCreate(t, e, 1, 10)
	name, ok := e.CurrentPlayer(1)
	require.True(t, ok)
	require.Equal(t, "Ann", name)

	_, err := e.IssueQuestion(1, "вопрос?")
	require.NoError(t, err)
	_, err = e.RecordAnswer(1, "да")
	require.NoError(t, err)

	name, _ = e.CurrentPlayer(1)
	require.Equal(t, "Ben", name)
}

func TestIsShortAnswer(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"да", true},
		{"не знаю", true},
		{"ровно три слова", true},
		{"а вот четыре слова", false},
		{"  слово  ", true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, IsShortAnswer(tc.text), "%q", tc.text)
	}
}

func TestSessionRecentHistory(t *testing.T) {
	s := &Session{}
	for i := 0; i < 5; i++ {
		s.History = append(s.History, QAItem{Question: string(rune('a' + i)), CreatedAt: time.Now()})
	}

	recent := s.RecentHistory(3)
	require.Len(t, recent, 3)
	require.Equal(t, "c", recent[0].Question)
	require.Equal(t, "e", recent[2].Question)

	require.Len(t, s.RecentHistory(10), 5)
	require.Nil(t, s.RecentHistory(0))
}
