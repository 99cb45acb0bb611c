package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

// 每个集合一个频道，订阅方可以用 feed:* 一次订阅全部
const (
	ChannelParties           = "feed:parties"
	ChannelUsers             = "feed:users"
	ChannelCompletionRecords = "feed:completion-records"
)

// Document 变更推送的载体：upsert 携带变更后的完整文档，delete 只携带 ID
type Document struct {
	Action string `json:"action"`
	ID     int64  `json:"id"`
	Data   any    `json:"data,omitempty"`
}

// Publisher 把变更后的文档发布到 Redis 频道。
// 推送是尽力而为的：失败只记录日志，不影响业务操作
type Publisher struct {
	cfg *config.Config
	rdb *redis.Client
}

func NewPublisher(cfg *config.Config, rdb *redis.Client) *Publisher {
	return &Publisher{
		cfg: cfg,
		rdb: rdb,
	}
}

func (p *Publisher) publish(channel string, doc Document) {
	body, err := json.Marshal(doc)
	if err != nil {
		slog.Warn("无法序列化变更文档", "channel", channel, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.Redis.PublishTimeout)*time.Second)
	defer cancel()

	if err := p.rdb.Publish(ctx, channel, body).Err(); err != nil {
		slog.Warn("变更文档推送失败", "channel", channel, "error", err)
	}
}

func (p *Publisher) PublishParty(party *domain.Party) {
	p.publish(ChannelParties, Document{Action: "upsert", ID: party.ID, Data: party})
}

func (p *Publisher) PublishPartyDeleted(id int64) {
	p.publish(ChannelParties, Document{Action: "delete", ID: id})
}

func (p *Publisher) PublishUser(user *domain.User) {
	p.publish(ChannelUsers, Document{Action: "upsert", ID: user.ID, Data: user})
}

func (p *Publisher) PublishCompletionRecord(record *domain.CompletionRecord) {
	p.publish(ChannelCompletionRecords, Document{Action: "upsert", ID: record.ID, Data: record})
}
