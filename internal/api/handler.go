package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"sudooom.sabacc/internal/game"
	"sudooom.sabacc/internal/repository"
	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/engine"
	"sudooom.sabacc/internal/sabacc/variant"
	"sudooom.sabacc/pkg/proto"
	"sudooom.sabacc/pkg/response"
)

// SessionService 会话操作, 由 game.Manager 实现
type SessionService interface {
	CreateSession(ctx context.Context, variantID core.VariantID, players []string, rules game.HouseRules) (string, error)
	SubmitAction(ctx context.Context, sessionID string, a core.Action) (*engine.Snapshot, error)
	Snapshot(sessionID, viewer string) (*engine.Snapshot, error)
	Disconnect(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error)
}

// SnapshotArchive 已结束会话的快照, 由 store.SnapshotStore 实现
type SnapshotArchive interface {
	Get(ctx context.Context, sessionID string) ([]byte, error)
}

// ResultFinder 对局结果查询, 由 repository.ResultRepository 实现
type ResultFinder interface {
	FindBySession(ctx context.Context, sessionID string) (*repository.GameResult, error)
}

// Handler 会话 HTTP 处理器
type Handler struct {
	sessions SessionService
	archive  SnapshotArchive
	results  ResultFinder
	rules    game.HouseRules
}

// NewHandler 创建处理器, archive 与 results 可以为 nil
func NewHandler(sessions SessionService, archive SnapshotArchive, results ResultFinder, rules game.HouseRules) *Handler {
	return &Handler{
		sessions: sessions,
		archive:  archive,
		results:  results,
		rules:    rules,
	}
}

// RulesRequest 创建会话时可覆盖的房规
type RulesRequest struct {
	TurnTimeoutMs    *int64  `json:"turnTimeoutMs"`
	TimeoutAction    string  `json:"timeoutAction"`
	DisconnectAction string  `json:"disconnectAction"`
	AllowDiscard     *bool   `json:"allowDiscard"`
	Reshuffle        *bool   `json:"reshuffle"`
	SuddenDeath      *bool   `json:"suddenDeath"`
	Seed             *uint64 `json:"seed"`
}

// CreateSessionRequest 创建会话请求
type CreateSessionRequest struct {
	Variant string        `json:"variant" binding:"required"`
	Players []string      `json:"players" binding:"required"`
	Rules   *RulesRequest `json:"rules"`
}

// DisconnectRequest 断线请求
type DisconnectRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

// ListVariants 列出支持的玩法
// GET /api/v1/variants
func (h *Handler) ListVariants(c *gin.Context) {
	ids := variant.IDs()
	out := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		cfg, err := variant.ByID(id)
		if err != nil {
			continue
		}
		out = append(out, gin.H{
			"id":      cfg.ID,
			"name":    cfg.Name,
			"actions": cfg.Actions,
		})
	}
	response.Success(c, out)
}

// CreateSession 创建会话
// POST /api/v1/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	rules, err := h.mergeRules(req.Rules)
	if err != nil {
		response.ErrorFromGameError(c, err)
		return
	}

	id, err := h.sessions.CreateSession(c.Request.Context(), core.VariantID(req.Variant), req.Players, rules)
	if err != nil {
		response.ErrorFromGameError(c, err)
		return
	}

	snap, err := h.sessions.Snapshot(id, "")
	if err != nil {
		// 两人对局可能在创建时就结束, 仍然返回 ID
		response.Success(c, gin.H{"sessionId": id})
		return
	}
	response.Success(c, gin.H{"sessionId": id, "snapshot": snap})
}

func (h *Handler) mergeRules(req *RulesRequest) (game.HouseRules, error) {
	rules := h.rules
	if req == nil {
		return rules, nil
	}
	if req.TurnTimeoutMs != nil {
		rules.TurnTimeout = time.Duration(*req.TurnTimeoutMs) * time.Millisecond
	}
	if req.TimeoutAction != "" {
		a, err := core.ParseActionType(req.TimeoutAction)
		if err != nil {
			return rules, err
		}
		rules.TimeoutAction = a
	}
	if req.DisconnectAction != "" {
		a, err := core.ParseActionType(req.DisconnectAction)
		if err != nil {
			return rules, err
		}
		rules.DisconnectAction = a
	}
	if req.AllowDiscard != nil {
		rules.Options.AllowDiscard = *req.AllowDiscard
	}
	if req.Reshuffle != nil {
		rules.Options.Reshuffle = *req.Reshuffle
	}
	if req.SuddenDeath != nil {
		rules.Options.SuddenDeath = *req.SuddenDeath
	}
	if req.Seed != nil {
		rules.Options.Seed = *req.Seed
	}
	return rules, rules.Validate()
}

// GetSession 获取会话快照, viewer 为空时隐藏手牌
// GET /api/v1/sessions/:id?viewer=
func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.sessions.Snapshot(id, c.Query("viewer"))
	if err == nil {
		response.Success(c, snap)
		return
	}
	if !errors.Is(err, core.ErrSessionNotFound) || h.archive == nil {
		response.ErrorFromGameError(c, err)
		return
	}

	// 已结束的会话从 Redis 读取最终快照
	data, archiveErr := h.archive.Get(c.Request.Context(), id)
	if archiveErr != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	if data == nil {
		response.ErrorFromGameError(c, err)
		return
	}
	response.Success(c, json.RawMessage(data))
}

// SubmitAction 提交动作
// POST /api/v1/sessions/:id/actions
func (h *Handler) SubmitAction(c *gin.Context) {
	var req proto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	a, err := game.ActionFromRequest(&req)
	if err != nil {
		response.ErrorFromGameError(c, err)
		return
	}

	snap, err := h.sessions.SubmitAction(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		response.ErrorFromGameError(c, err)
		return
	}
	response.Success(c, snap)
}

// Disconnect 标记玩家断线
// POST /api/v1/sessions/:id/disconnect
func (h *Handler) Disconnect(c *gin.Context) {
	var req DisconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	snap, err := h.sessions.Disconnect(c.Request.Context(), c.Param("id"), req.PlayerID)
	if err != nil {
		response.ErrorFromGameError(c, err)
		return
	}
	response.Success(c, snap)
}

// GetResult 查询对局结果
// GET /api/v1/sessions/:id/result
func (h *Handler) GetResult(c *gin.Context) {
	if h.results == nil {
		response.Error(c, response.CodeServerError)
		return
	}

	res, err := h.results.FindBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	if res == nil {
		response.Error(c, response.CodeSessionNotFound)
		return
	}
	response.Success(c, res)
}
