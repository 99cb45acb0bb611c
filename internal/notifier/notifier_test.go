package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

// blockingPublisher 在 release 关闭前不完成任何投递
type blockingPublisher struct {
	release   chan struct{}
	published chan amqp.Publishing
}

func (p *blockingPublisher) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	<-p.release
	p.published <- msg
	return nil
}

func TestDispatchDoesNotBlockCaller(t *testing.T) {
	fake := &blockingPublisher{
		release:   make(chan struct{}),
		published: make(chan amqp.Publishing, 4),
	}
	cfg := &config.Config{}
	cfg.RabbitMQ.PublishTimeout = 1

	d := &Dispatcher{cfg: cfg, channel: fake}

	done := make(chan struct{})
	go func() {
		d.Dispatch(&domain.Event{
			Type:       domain.EventUserLoggedIn,
			ActorName:  "alice",
			OccurredAt: time.Now(),
		})
		close(done)
	}()

	// 投递被卡住时 Dispatch 也必须立刻返回
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch 阻塞了调用方")
	}

	// 放行后消息会在后台完成投递
	close(fake.release)
	select {
	case msg := <-fake.published:
		var message domain.NotificationMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if message.Channel != domain.ChannelLog {
			t.Errorf("频道 = %s, 期望 log", message.Channel)
		}
	case <-time.After(time.Second):
		t.Fatal("后台投递没有完成")
	}
}
