package telegram

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/hromoibes/love-game-telegram/internal/game"
	"github.com/hromoibes/love-game-telegram/internal/services"
	"github.com/hromoibes/love-game-telegram/internal/ws"
)

// Generator produces question and summary text. The engine never calls it;
// the handler does, and falls back to canned text when it fails.
type Generator interface {
	IsAvailable() bool
	GenerateQuestion(level game.Level, players [2]string, history []game.QAItem) (string, error)
	GenerateSummary(players [2]string, history []game.QAItem) (string, error)
}

var fallbackQuestions = map[game.Level]string{
	game.LevelLight: "Какое ласковое слово тебе нравится больше всего?",
	game.LevelHot:   "Ты бы хотел чаще говорить о своих желаниях?",
	game.LevelBold:  "Что самое смелое ты бы сделал ради партнёра?",
}

const fallbackSummary = "Игра завершена! Вы отлично справились ❤️"

const rulesText = "🔥 Love4Two — правила:\n" +
	"• Ответы: «да», «нет», одно слово или медиа.\n" +
	"• У каждого игрока 1 пропуск — команда /skip.\n" +
	"• 3 уровня: 💬 лёгкий флирт, 🔥 средний, 💣 очень горячий.\n" +
	"• Вопросы по очереди, бот подстраивается под ответы.\n" +
	"• На ответ 60 секунд, потом бот напомнит."

type UpdateHandler struct {
	client    *Client
	state     *StateManager
	engine    *game.Engine
	generator Generator
	archive   *services.ArchiveService
	hub       *ws.Hub
}

func NewUpdateHandler(
	client *Client,
	state *StateManager,
	engine *game.Engine,
	generator Generator,
	archive *services.ArchiveService,
	hub *ws.Hub,
) *UpdateHandler {
	return &UpdateHandler{
		client:    client,
		state:     state,
		engine:    engine,
		generator: generator,
		archive:   archive,
		hub:       hub,
	}
}

func (h *UpdateHandler) Handle(upd Update) {
	if upd.CallbackQuery != nil {
		h.handleCallback(upd.CallbackQuery)
		return
	}
	if upd.Message != nil {
		h.handleMessage(upd.Message)
	}
}

func (h *UpdateHandler) handleMessage(msg *Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case isCommand(msg, "start"):
		h.cmdStart(chatID)
		return
	case isCommand(msg, "rules"):
		h.client.SendMessage(chatID, rulesText, "", nil)
		return
	case isCommand(msg, "question"):
		h.cmdQuestion(chatID)
		return
	case isCommand(msg, "skip"):
		h.cmdSkip(chatID)
		return
	case isCommand(msg, "level"):
		h.cmdLevel(chatID)
		return
	case isCommand(msg, "finish"):
		h.cmdFinish(chatID)
		return
	}

	switch text {
	case BtnQuestion:
		h.cmdQuestion(chatID)
		return
	case BtnSkip:
		h.cmdSkip(chatID)
		return
	case BtnLevel:
		h.cmdLevel(chatID)
		return
	case BtnFinish:
		h.cmdFinish(chatID)
		return
	}

	st := h.state.Get(chatID)
	switch st.State {
	case StateEnterName1:
		h.onName1(chatID, text)
	case StateEnterName2:
		h.onName2(chatID, text)
	case StatePickLevel, StatePickLength:
		h.client.SendMessage(chatID, "Выберите вариант кнопкой выше 👆", "", nil)
	default:
		h.onAnswer(chatID, text)
	}
}

func (h *UpdateHandler) cmdStart(chatID int64) {
	h.engine.StartSetup(chatID)
	h.state.Set(chatID, &SetupState{State: StateEnterName1})
	h.client.SendMessage(chatID,
		"🔥 Love4Two — игра для пары.\nНапишите имя первого игрока:", "", nil)
}

func (h *UpdateHandler) onName1(chatID int64, name string) {
	if name == "" {
		h.client.SendMessage(chatID, "Имя не может быть пустым. Напишите имя первого игрока:", "", nil)
		return
	}
	h.state.UpdateField(chatID, func(s *SetupState) {
		s.Player1 = name
		s.State = StateEnterName2
	})
	h.client.SendMessage(chatID, "Теперь имя второго игрока:", "", nil)
}

func (h *UpdateHandler) onName2(chatID int64, name string) {
	if name == "" {
		h.client.SendMessage(chatID, "Имя не может быть пустым. Напишите имя второго игрока:", "", nil)
		return
	}
	h.state.UpdateField(chatID, func(s *SetupState) {
		s.Player2 = name
		s.State = StatePickLevel
	})
	h.client.SendMessage(chatID, "Выберите уровень откровенности:", "", LevelKeyboard())
}

func (h *UpdateHandler) cmdQuestion(chatID int64) {
	sess, ok := h.engine.Session(chatID)
	if !ok {
		h.client.SendMessage(chatID, "Сначала напишите /start.", "", nil)
		return
	}
	if !sess.SetupComplete() {
		h.client.SendMessage(chatID, "Сначала закончите настройку игры.", "", nil)
		return
	}
	if sess.WaitingForAnswer {
		h.client.SendMessage(chatID, "Сначала ответьте на предыдущий вопрос!", "", nil)
		return
	}

	question, err := h.generator.GenerateQuestion(sess.Level, sess.Players, sess.RecentHistory(6))
	if err != nil {
		log.Printf("question generation fallback for chat %d: %v", chatID, err)
		question = fallbackQuestions[sess.Level]
	}

	issued, err := h.engine.IssueQuestion(chatID, question)
	if err != nil {
		h.sendEngineError(chatID, err)
		return
	}

	item := issued.History[len(issued.History)-1]
	h.client.SendMessage(chatID,
		fmt.Sprintf("🎯 Вопрос для <b>%s</b> (уровень %s %s):\n\n%s",
			item.Target, issued.Level.Label(), issued.Level.Emoji(), item.Question),
		"HTML", GameMenuKeyboard())

	h.broadcast(chatID, ws.EventQuestionIssued, issued)
}

func (h *UpdateHandler) onAnswer(chatID int64, text string) {
	res, err := h.engine.RecordAnswer(chatID, text)
	if err != nil {
		h.sendEngineError(chatID, err)
		return
	}

	reply := "✅ Ответ принят."
	if res.LevelChanged {
		reply += fmt.Sprintf(" Уровень теперь: %s %s.", res.NewLevel.Label(), res.NewLevel.Emoji())
	}

	h.broadcast(chatID, ws.EventAnswerRecorded, res.Session)
	if res.LevelChanged {
		h.broadcast(chatID, ws.EventLevelChanged, res.Session)
	}

	if res.Finished {
		h.client.SendMessage(chatID, reply+" Это был последний вопрос!", "", nil)
		h.finishGame(chatID)
		return
	}

	h.client.SendMessage(chatID, reply+" Введите /question для следующего.", "", GameMenuKeyboard())
}

func (h *UpdateHandler) cmdSkip(chatID int64) {
	res, err := h.engine.RecordSkip(chatID)
	if err != nil {
		h.sendEngineError(chatID, err)
		return
	}

	h.broadcast(chatID, ws.EventQuestionSkipped, res.Session)

	if res.Finished {
		h.client.SendMessage(chatID, "🛟 Пропуск принят. Это был последний вопрос!", "", nil)
		h.finishGame(chatID)
		return
	}

	h.client.SendMessage(chatID, "🛟 Пропуск принят. Введите /question для следующего.", "", GameMenuKeyboard())
}

func (h *UpdateHandler) cmdLevel(chatID int64) {
	sess, ok := h.engine.Session(chatID)
	if !ok || !sess.SetupComplete() {
		h.client.SendMessage(chatID, "Сначала напишите /start.", "", nil)
		return
	}

	h.client.SendMessage(chatID,
		fmt.Sprintf("Текущий уровень: %s %s", sess.Level.Label(), sess.Level.Emoji()),
		"", LevelAdjustKeyboard())
}

func (h *UpdateHandler) cmdFinish(chatID int64) {
	h.finishGame(chatID)
}

func (h *UpdateHandler) finishGame(chatID int64) {
	sess, err := h.engine.Finish(chatID)
	if err != nil {
		h.sendEngineError(chatID, err)
		return
	}
	h.state.Clear(chatID)

	summary, genErr := h.generator.GenerateSummary(sess.Players, sess.History)
	if genErr != nil {
		log.Printf("summary generation fallback for chat %d: %v", chatID, genErr)
		summary = fallbackSummary
	}

	if h.archive != nil {
		if _, err := h.archive.ArchiveGame(sess, summary); err != nil {
			log.Printf("archive game for chat %d: %v", chatID, err)
		}
	}

	h.client.SendMessage(chatID,
		fmt.Sprintf("🏁 Игра завершена!\n\n%s\n\nДля новой игры нажмите /start", summary),
		"", &ReplyKeyboardRemove{RemoveKeyboard: true})

	h.broadcast(chatID, ws.EventGameFinished, sess)
}

func (h *UpdateHandler) handleCallback(cb *CallbackQuery) {
	if cb.Message == nil {
		h.client.AnswerCallbackQuery(cb.ID, "Неверные данные", true)
		return
	}
	chatID := cb.Message.Chat.ID

	parts := strings.SplitN(cb.Data, ":", 2)
	if len(parts) != 2 {
		h.client.AnswerCallbackQuery(cb.ID, "Неверные данные", true)
		return
	}

	switch parts[0] {
	case "lvl":
		h.onLevelPicked(cb, chatID, parts[1])
	case "len":
		h.onLengthPicked(cb, chatID, parts[1])
	case "adj":
		h.onLevelAdjusted(cb, chatID, parts[1])
	default:
		h.client.AnswerCallbackQuery(cb.ID, "Неверные данные", true)
	}
}

func (h *UpdateHandler) onLevelPicked(cb *CallbackQuery, chatID int64, raw string) {
	st := h.state.Get(chatID)
	if st.State != StatePickLevel {
		h.client.AnswerCallbackQuery(cb.ID, "Настройка уже завершена", true)
		return
	}

	level, ok := game.ParseLevel(raw)
	if !ok {
		h.client.AnswerCallbackQuery(cb.ID, "Неверный уровень", true)
		return
	}

	h.state.UpdateField(chatID, func(s *SetupState) {
		s.Level = level
		s.State = StatePickLength
	})

	h.client.AnswerCallbackQuery(cb.ID, fmt.Sprintf("Уровень: %s", level.Label()), false)
	h.client.EditMessageText(chatID, cb.Message.MessageID,
		fmt.Sprintf("Уровень: %s %s\n\nСколько вопросов сыграем?", level.Emoji(), level.Label()),
		"", LengthKeyboard())
}

func (h *UpdateHandler) onLengthPicked(cb *CallbackQuery, chatID int64, raw string) {
	st := h.state.Get(chatID)
	if st.State != StatePickLength {
		h.client.AnswerCallbackQuery(cb.ID, "Настройка уже завершена", true)
		return
	}

	maxQuestions, err := strconv.Atoi(raw)
	if err != nil || maxQuestions <= 0 {
		h.client.AnswerCallbackQuery(cb.ID, "Неверное число", true)
		return
	}

	sess, err := h.engine.CreateSession(chatID, st.Player1, st.Player2, st.Level, maxQuestions)
	if err != nil {
		h.client.AnswerCallbackQuery(cb.ID, "Не хватает данных, начните с /start", true)
		return
	}
	h.state.Clear(chatID)

	h.client.AnswerCallbackQuery(cb.ID, "Игра создана!", false)
	h.client.EditMessageText(chatID, cb.Message.MessageID,
		fmt.Sprintf("Уровень: %s %s | Вопросов: %d", sess.Level.Emoji(), sess.Level.Label(), sess.MaxQuestions),
		"", nil)
	h.client.SendMessage(chatID,
		fmt.Sprintf("Отлично! %s и %s, давайте начнём.\nВведите /question.",
			sess.Players[0], sess.Players[1]),
		"", GameMenuKeyboard())
}

func (h *UpdateHandler) onLevelAdjusted(cb *CallbackQuery, chatID int64, raw string) {
	var dir game.Direction
	switch raw {
	case "up":
		dir = game.DirUp
	case "down":
		dir = game.DirDown
	default:
		h.client.AnswerCallbackQuery(cb.ID, "Неверные данные", true)
		return
	}

	sess, err := h.engine.AdjustLevel(chatID, dir)
	if err != nil {
		h.client.AnswerCallbackQuery(cb.ID, "Нет активной игры", true)
		return
	}

	h.client.AnswerCallbackQuery(cb.ID,
		fmt.Sprintf("Уровень: %s", sess.Level.Label()), false)
	h.client.EditMessageText(chatID, cb.Message.MessageID,
		fmt.Sprintf("Текущий уровень: %s %s", sess.Level.Label(), sess.Level.Emoji()),
		"", LevelAdjustKeyboard())

	h.broadcast(chatID, ws.EventLevelChanged, sess)
}

// Remind is the engine's answer-timeout callback; the engine has already
// verified the question is still pending.
func (h *UpdateHandler) Remind(chatID int64, item game.QAItem, player string) {
	h.client.SendMessage(chatID,
		fmt.Sprintf("⏰ Напоминание! Ответ для %s на вопрос:\n%s\n\nНе затягивайте — просто «да», «нет» или одно слово.",
			player, item.Question),
		"", nil)
}

func (h *UpdateHandler) sendEngineError(chatID int64, err error) {
	var reply string
	switch {
	case errors.Is(err, game.ErrNoActiveSession):
		reply = "Нет активной игры. Напишите /start."
	case errors.Is(err, game.ErrSetupIncomplete):
		reply = "Сначала закончите настройку игры."
	case errors.Is(err, game.ErrQuestionPending):
		reply = "Сначала ответьте на предыдущий вопрос!"
	case errors.Is(err, game.ErrNoQuestionPending):
		reply = "Нет активного вопроса. Введите /question."
	case errors.Is(err, game.ErrAnswerTooLong):
		reply = "Ответ должен быть коротким — «да», «нет» или пара слов."
	case errors.Is(err, game.ErrNoSkipsLeft):
		reply = "Пропуск уже израсходован."
	case errors.Is(err, game.ErrSessionFinished):
		reply = "Игра уже завершена. Введите /finish для итогов."
	default:
		reply = "Что-то пошло не так. Попробуйте ещё раз."
	}
	h.client.SendMessage(chatID, reply, "", nil)
}

func (h *UpdateHandler) broadcast(chatID int64, event string, data interface{}) {
	if h.hub != nil {
		h.hub.Broadcast(chatID, ws.WSMessage{Type: event, Data: data})
	}
}

func isCommand(msg *Message, cmd string) bool {
	if msg.Entities == nil {
		return false
	}
	for _, e := range msg.Entities {
		if e.Type == "bot_command" && e.Offset == 0 {
			// Entity bounds come off the wire; never trust them.
			end := e.Length
			if e.Length < 0 || end > len(msg.Text) {
				return false
			}
			cmdText := strings.Split(msg.Text[:end], "@")[0]
			return cmdText == "/"+cmd
		}
	}
	return false
}
