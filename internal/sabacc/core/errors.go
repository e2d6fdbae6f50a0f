package core

import (
	"errors"
	"fmt"
)

// GameError 游戏错误类型
type GameError struct {
	Code    string         // 错误代码
	Message string         // 错误消息
	Cause   error          // 原因错误
	Context map[string]any // 错误上下文
}

func (e *GameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Cause
}

// Is 按错误代码匹配, 使 errors.Is 对派生出来的错误同样有效
func (e *GameError) Is(target error) bool {
	var t *GameError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewGameError 创建游戏错误
func NewGameError(code, message string) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
	}
}

// WithCause 返回带原因的副本, 预定义错误本身不会被修改
func (e *GameError) WithCause(cause error) *GameError {
	cp := e.clone()
	cp.Cause = cause
	return cp
}

// WithContext 返回带上下文信息的副本
func (e *GameError) WithContext(key string, value any) *GameError {
	cp := e.clone()
	cp.Context[key] = value
	return cp
}

// WithMessage 返回替换了消息的副本
func (e *GameError) WithMessage(format string, args ...any) *GameError {
	cp := e.clone()
	cp.Message = fmt.Sprintf(format, args...)
	return cp
}

func (e *GameError) clone() *GameError {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	return &GameError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: ctx,
	}
}

// CodeOf 返回错误代码, 非 GameError 返回空字符串
func CodeOf(err error) string {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

const (
	CodeIllegalAction         = "ILLEGAL_ACTION"
	CodeNotYourTurn           = "NOT_YOUR_TURN"
	CodeInvalidParams         = "INVALID_PARAMS"
	CodeDeckExhausted         = "DECK_EXHAUSTED"
	CodeSuddenDeathExhausted  = "SUDDEN_DEATH_EXHAUSTED"
	CodeUnresolvedSpecialCard = "UNRESOLVED_SPECIAL_CARD"
	CodeInvalidPlayerCount    = "INVALID_PLAYER_COUNT"
	CodeInvalidVariant        = "INVALID_VARIANT"
	CodeGameOver              = "GAME_OVER"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeInvalidState          = "INVALID_STATE"
)

// 动作相关错误
var (
	ErrIllegalAction = NewGameError(CodeIllegalAction, "action is not legal now")
	ErrNotYourTurn   = NewGameError(CodeNotYourTurn, "it is not this player's turn")
	ErrInvalidParams = NewGameError(CodeInvalidParams, "invalid action parameters")
)

// 牌堆相关错误
var (
	ErrDeckExhausted         = NewGameError(CodeDeckExhausted, "deck is exhausted")
	ErrSuddenDeathExhausted  = NewGameError(CodeSuddenDeathExhausted, "deck ran out during sudden death")
	ErrUnresolvedSpecialCard = NewGameError(CodeUnresolvedSpecialCard, "special card has nothing to resolve against")
)

// 会话相关错误
var (
	ErrInvalidPlayerCount = NewGameError(CodeInvalidPlayerCount, "player count must be between 2 and 8")
	ErrInvalidVariant     = NewGameError(CodeInvalidVariant, "unknown variant")
	ErrGameOver           = NewGameError(CodeGameOver, "game is over")
	ErrSessionNotFound    = NewGameError(CodeSessionNotFound, "session not found")
	ErrInvalidState       = NewGameError(CodeInvalidState, "invalid game state")
)
