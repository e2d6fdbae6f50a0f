package proto

// NATS Subject 常量定义
const (
	// SubjectActions 玩家动作请求 (request/reply)
	SubjectActions = "sabacc.actions"

	// SubjectEventsPrefix 会话事件前缀
	// 完整格式: sabacc.events.{session_id}
	SubjectEventsPrefix = "sabacc.events."

	// QueueGroupEngine 引擎服务队列组名称
	QueueGroupEngine = "sabacc-engine"
)

// BuildEventSubject 构建会话事件 Subject
func BuildEventSubject(sessionID string) string {
	return SubjectEventsPrefix + sessionID
}
