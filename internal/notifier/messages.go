package notifier

import (
	"fmt"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

// Messages 为一个事件生成要投递的通知消息：
// 日志频道记录所有操作，通知频道只播报组队的生命周期变化。
// 面向用户的文案沿用原系统的繁体中文
func Messages(event *domain.Event) []domain.NotificationMessage {
	messages := make([]domain.NotificationMessage, 0, 2)

	if line := logLine(event); line != "" {
		messages = append(messages, domain.NotificationMessage{
			Channel: domain.ChannelLog,
			Content: fmt.Sprintf("[LOG] %s - %s", event.OccurredAt.Format("15:04:05"), line),
		})
	}

	if announcement := announcement(event); announcement != "" {
		messages = append(messages, domain.NotificationMessage{
			Channel: domain.ChannelNotify,
			Content: "📣 **聖域快訊**\n" + announcement,
		})
	}

	return messages
}

func logLine(event *domain.Event) string {
	switch event.Type {
	case domain.EventUserLoggedIn:
		return fmt.Sprintf("使用者登入: %s", event.ActorName)
	case domain.EventLoginFailed:
		return fmt.Sprintf("登入失敗: %s (密碼錯誤)", event.ActorName)
	case domain.EventUserRegistered:
		return fmt.Sprintf("新使用者註冊: %s", event.ActorName)
	case domain.EventPartyCreated:
		return fmt.Sprintf("建立組隊: by %s, Time: %s", event.ActorName, event.Party.ScheduledTime)
	case domain.EventPartyDeleted:
		return fmt.Sprintf("刪除組隊: ID %d by %s", event.Party.ID, event.ActorName)
	case domain.EventSlotClaimed:
		return fmt.Sprintf("加入組隊: %s joined Party %d", event.ActorName, event.Party.ID)
	case domain.EventSlotReleased:
		return fmt.Sprintf("離開組隊: %s left Party %d", event.Slot.UserName, event.Party.ID)
	case domain.EventPartyCompleted:
		return fmt.Sprintf("完成組隊: Party %d completed", event.Party.ID)
	case domain.EventCharacterAdded:
		return fmt.Sprintf("新增角色: %s added %s (%s)", event.ActorName, event.Character.Name, event.Character.Class)
	case domain.EventCharacterRenamed:
		return fmt.Sprintf("修改角色: %s renamed to %s", event.ActorName, event.Character.Name)
	case domain.EventCharacterRemoved:
		return fmt.Sprintf("刪除角色: %s removed %s", event.ActorName, event.Character.Name)
	case domain.EventPINReset:
		return fmt.Sprintf("管理員重設密碼: %s by %s", event.TargetName, event.ActorName)
	case domain.EventSettingsUpdated:
		return "系統設定更新: Webhooks updated"
	default:
		return ""
	}
}

func announcement(event *domain.Event) string {
	switch event.Type {
	case domain.EventPartyCreated:
		return fmt.Sprintf("%s 建立了一個新組隊！\n📅 時間: %s\n⚔️ 場次: %s 場",
			event.ActorName, event.Party.ScheduledTime, event.Party.EstimatedRuns)
	case domain.EventPartyDeleted:
		return fmt.Sprintf("❌ 組隊已取消/刪除\n建立者: %s\n時間: %s",
			event.Party.CreatorName, event.Party.ScheduledTime)
	case domain.EventSlotClaimed:
		return fmt.Sprintf("➕ %s 加入了組隊\n角色: %s (%s)",
			event.ActorName, event.Slot.CharName, event.Slot.CharClass.DisplayName())
	case domain.EventSlotReleased:
		return fmt.Sprintf("➖ %s 離開了組隊\n角色: %s",
			event.Slot.UserName, event.Slot.CharName)
	case domain.EventPartyCompleted:
		return fmt.Sprintf("✅ 組隊通關完成！\n隊長: %s\n時間: %s\n場次: %s",
			event.Party.CreatorName, event.Party.ScheduledTime, event.Party.EstimatedRuns)
	default:
		return ""
	}
}
