package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sudooom.sabacc/internal/sabacc/engine"
	"sudooom.sabacc/internal/sabacc/rank"
)

// DB 仓库使用的查询接口, *pgxpool.Pool 满足该接口
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GameResult 一局结束后的存档
type GameResult struct {
	SessionID string        `json:"sessionId"`
	Variant   string        `json:"variant"`
	Winners   []string      `json:"winners"`
	SharedWin bool          `json:"sharedWin"`
	Ranking   *rank.Ranking `json:"ranking"`
	Rounds    int           `json:"rounds"`
	EndedAt   time.Time     `json:"endedAt"`
}

// ResultRepository 对局结果仓库
type ResultRepository struct {
	db     DB
	logger *slog.Logger
}

// NewResultRepository 创建对局结果仓库
func NewResultRepository(db DB) *ResultRepository {
	return &ResultRepository{
		db:     db,
		logger: slog.Default().With("component", "result_repository"),
	}
}

// Save 写入对局结果, 同一会话重复写入时忽略
func (r *ResultRepository) Save(ctx context.Context, res *GameResult) error {
	query := `
		INSERT INTO game_results (session_id, variant, winners, shared_win, ranking, rounds, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO NOTHING
	`

	ranking, err := json.Marshal(res.Ranking)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		res.SessionID,
		res.Variant,
		res.Winners,
		res.SharedWin,
		ranking,
		res.Rounds,
		res.EndedAt,
	)
	return err
}

// FindBySession 根据会话 ID 查找结果, 不存在时返回 nil, nil
func (r *ResultRepository) FindBySession(ctx context.Context, sessionID string) (*GameResult, error) {
	query := `
		SELECT session_id, variant, winners, shared_win, ranking, rounds, ended_at
		FROM game_results WHERE session_id = $1
	`

	var (
		res     GameResult
		ranking []byte
	)
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&res.SessionID,
		&res.Variant,
		&res.Winners,
		&res.SharedWin,
		&ranking,
		&res.Rounds,
		&res.EndedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(ranking) > 0 {
		res.Ranking = &rank.Ranking{}
		if err := json.Unmarshal(ranking, res.Ranking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ranking: %w", err)
		}
	}
	return &res, nil
}

// OnEvent 实现 game.EventSink, 只关心 GameEnded
func (r *ResultRepository) OnEvent(ctx context.Context, ev engine.Event, _ *engine.Snapshot) error {
	if ev.Type != engine.EventGameEnded || ev.Results == nil {
		return nil
	}

	res := &GameResult{
		SessionID: ev.SessionID,
		Variant:   string(ev.Variant),
		Winners:   ev.Results.Winners,
		SharedWin: ev.Results.SharedWin,
		Ranking:   ev.Results,
		Rounds:    ev.Round,
		EndedAt:   ev.At,
	}
	if err := r.Save(ctx, res); err != nil {
		r.logger.Error("Failed to save game result", "sessionId", ev.SessionID, "error", err)
		return err
	}

	r.logger.Info("Saved game result", "sessionId", ev.SessionID, "winners", res.Winners)
	return nil
}
