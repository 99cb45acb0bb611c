package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

// QueueName webhook 通知所使用的队列
const QueueName = "webhook_queue"

// publisher 是 Dispatcher 所需的最小发布能力，*amqp.Channel 实现了它
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Dispatcher 把领域事件转换为通知消息并投递到消息队列。
// 通知是尽力而为的：任何失败只记录日志，绝不影响触发它的业务操作
type Dispatcher struct {
	cfg     *config.Config
	channel publisher
}

func NewDispatcher(cfg *config.Config, channel *amqp.Channel) *Dispatcher {
	return &Dispatcher{
		cfg:     cfg,
		channel: channel,
	}
}

// Dispatch 消息在当前 goroutine 中生成，投递在后台进行，
// 消息队列不可用时调用方不会被阻塞
func (d *Dispatcher) Dispatch(event *domain.Event) {
	messages := Messages(event)
	if len(messages) == 0 {
		return
	}

	go func() {
		for _, message := range messages {
			body, err := json.Marshal(message)
			if err != nil {
				slog.Warn("无法序列化通知消息", "type", event.Type, "error", err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(d.cfg.RabbitMQ.PublishTimeout)*time.Second)

			err = d.channel.PublishWithContext(
				ctx,
				"",
				QueueName,
				false,
				false,
				amqp.Publishing{
					ContentType: "application/json",
					Body:        body,
				},
			)
			cancel()

			if err != nil {
				slog.Warn("通知消息投递失败", "type", event.Type, "channel", message.Channel, "error", err)
			}
		}
	}()
}
