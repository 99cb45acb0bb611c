package domain

// NotificationChannel 通知消息所属的频道
type NotificationChannel string

const (
	// ChannelLog 记录所有操作的日志频道
	ChannelLog NotificationChannel = "log"
	// ChannelNotify 面向用户的组队通知频道
	ChannelNotify NotificationChannel = "notify"
)

// Settings 系统设置，只有一条记录
type Settings struct {
	LogWebhookURL    string `json:"logWebhookUrl"`
	NotifyWebhookURL string `json:"notifyWebhookUrl"`
	Version          int32  `json:"-"`
}

// WebhookURL 返回某个频道对应的 webhook 地址，未配置时返回空字符串
func (s *Settings) WebhookURL(channel NotificationChannel) string {
	switch channel {
	case ChannelLog:
		return s.LogWebhookURL
	case ChannelNotify:
		return s.NotifyWebhookURL
	default:
		return ""
	}
}

// NotificationMessage 投递到消息队列中的通知消息
type NotificationMessage struct {
	Channel NotificationChannel `json:"channel"`
	Content string              `json:"content"`
}
