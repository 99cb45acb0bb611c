package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
	"github.com/sanctuary-dev/party-roster/backend/internal/notifier"
	"github.com/sanctuary-dev/party-roster/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// webhookPayload Discord webhook 所要求的请求体
type webhookPayload struct {
	Content   string `json:"content"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库（webhook 地址保存在设置中，每次投递前读取最新值）
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 创建 HTTP 客户端
	 **********************************************/
	client := &http.Client{
		Timeout: time.Duration(cfg.Webhook.SendTimeout) * time.Second,
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := ch.QueueDeclare(
		notifier.QueueName, // 队列名称
		true,               // 是否持久化
		false,              // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false,              // 是否独占，即是否允许多个消费者访问这个队列
		false,              // 是否不等待，设置为 false，即等待 RabbitMQ 确认队列是否创建成功
		nil,                // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，设置为空字符串，表示由 RabbitMQ 自动分配
		false,  // 是否自动确认消息
		false,  // 是否独占队列
		false,  // 是否禁止消费者接受自己发送的消息，必须设置为 false，因为 RabbitMQ 不支持这个参数
		false,  // 是否不等待，等待 RabbitMQ 响应
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("收到消息", slog.String("message", string(msg.Body)))

				// 通知是尽力而为的：无论哪一步失败都只记录日志并丢弃消息，
				// 绝不重新入队，避免失败的投递反复阻塞队列
				message := domain.NotificationMessage{}
				if err := json.Unmarshal(msg.Body, &message); err != nil {
					logger.Error("通知消息反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				settings, err := repo.GetSettings()
				if err != nil {
					logger.Error("无法读取系统设置", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				url := settings.WebhookURL(message.Channel)
				if url == "" {
					// 未配置对应频道的 webhook 不是错误，直接丢弃
					_ = msg.Ack(false)
					continue
				}

				payload, err := json.Marshal(webhookPayload{
					Content:   message.Content,
					Username:  cfg.Webhook.Username,
					AvatarURL: cfg.Webhook.AvatarURL,
				})
				if err != nil {
					logger.Error("无法序列化 webhook 请求体", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
				if err != nil {
					logger.Error("webhook 投递失败", slog.String("channel", string(message.Channel)), slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				resp.Body.Close()

				if resp.StatusCode >= 400 {
					logger.Error("webhook 返回错误状态", slog.String("channel", string(message.Channel)), slog.Int("status", resp.StatusCode))
					_ = msg.Nack(false, false)
					continue
				}

				// 确认消息
				_ = msg.Ack(false)
			}
		}
	}()

	// 等待 CTRL+C 信号
	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 notifier worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	slog.Info("notifier worker 已成功关闭")
}
