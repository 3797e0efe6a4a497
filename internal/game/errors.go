package game

import "errors"

// All engine failures are local and recoverable: the operation leaves the
// session untouched and the caller maps the sentinel to a user message.
var (
	ErrNoActiveSession   = errors.New("no active session for chat")
	ErrSetupIncomplete   = errors.New("session setup is not complete")
	ErrQuestionPending   = errors.New("previous question is still unanswered")
	ErrNoQuestionPending = errors.New("no question is awaiting an answer")
	ErrAnswerTooLong     = errors.New("answer is too long")
	ErrNoSkipsLeft       = errors.New("no skips left for current player")
	ErrSessionFinished   = errors.New("session is finished")
)
