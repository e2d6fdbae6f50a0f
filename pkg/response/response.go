package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sudooom.sabacc/internal/sabacc/core"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	CodeSuccess = 0

	// 请求相关 10000-10999
	CodeInvalidParams = 10001

	// 对局相关 20000-20999
	CodeIllegalAction         = 20001
	CodeNotYourTurn           = 20002
	CodeInvalidState          = 20003
	CodeGameOver              = 20004
	CodeSessionNotFound       = 20005
	CodeInvalidVariant        = 20006
	CodeInvalidPlayerCount    = 20007
	CodeDeckExhausted         = 20008
	CodeUnresolvedSpecialCard = 20009
	CodeSuddenDeathExhausted  = 20010

	// 系统错误 50000-50999
	CodeServerError = 50000
)

// gameCodes GameError.Code -> 数字错误码
var gameCodes = map[string]int{
	core.CodeInvalidParams:         CodeInvalidParams,
	core.CodeIllegalAction:         CodeIllegalAction,
	core.CodeNotYourTurn:           CodeNotYourTurn,
	core.CodeInvalidState:          CodeInvalidState,
	core.CodeGameOver:              CodeGameOver,
	core.CodeSessionNotFound:       CodeSessionNotFound,
	core.CodeInvalidVariant:        CodeInvalidVariant,
	core.CodeInvalidPlayerCount:    CodeInvalidPlayerCount,
	core.CodeDeckExhausted:         CodeDeckExhausted,
	core.CodeUnresolvedSpecialCard: CodeUnresolvedSpecialCard,
	core.CodeSuddenDeathExhausted:  CodeSuddenDeathExhausted,
}

var codeMessages = map[int]string{
	CodeSuccess:         "success",
	CodeInvalidParams:   "参数校验失败",
	CodeSessionNotFound: "会话不存在",
	CodeServerError:     "服务器内部错误",
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int) {
	message := codeMessages[code]
	if message == "" {
		message = "unknown error"
	}
	ErrorWithMsg(c, code, message)
}

// ErrorWithMsg 自定义错误消息
func ErrorWithMsg(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ErrorFromGameError 从 GameError 生成错误响应, 其他错误按服务器错误处理
func ErrorFromGameError(c *gin.Context, err error) {
	code, ok := gameCodes[core.CodeOf(err)]
	if !ok {
		Error(c, CodeServerError)
		return
	}
	ErrorWithMsg(c, code, err.Error())
}

// CodeOf GameError 对应的数字错误码
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}
	if code, ok := gameCodes[core.CodeOf(err)]; ok {
		return code
	}
	return CodeServerError
}
