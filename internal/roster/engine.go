package roster

import (
	"time"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

// ClaimSlot 在内存中的组队快照上尝试占用一个位置。
// 校验顺序保证了同一个用户的并发占位（例如连点两次）只会有一次成功，
// 失败的一次拿到的是 ErrAlreadyMember 而不是 ErrSlotTaken
func ClaimSlot(party *domain.Party, teamKey domain.TeamKey, index int, user *domain.User, char domain.Character) error {
	if party.Status != domain.PartyStatusOpen {
		return domain.ErrPartyClosed
	}

	team, ok := party.Team(teamKey)
	if !ok {
		return domain.ErrNotFound
	}

	if index < 0 || index >= len(team) {
		return domain.ErrNotFound
	}

	// 一人一位：同一个组队的两个小队加起来最多只能有一个位置属于这个用户
	if party.HasMember(user.ID) {
		return domain.ErrAlreadyMember
	}

	if team[index] != nil {
		return domain.ErrSlotTaken
	}

	team[index] = &domain.Slot{
		UserID:    user.ID,
		UserName:  user.Name,
		CharName:  char.Name,
		CharClass: char.Class,
	}

	return nil
}

// ReleaseSlot 清空一个已被占用的位置，只有占用者本人或管理员可以执行。
// 返回被清空的位置内容，供通知消息使用
func ReleaseSlot(party *domain.Party, teamKey domain.TeamKey, index int, actor *domain.User) (*domain.Slot, error) {
	if party.Status != domain.PartyStatusOpen {
		return nil, domain.ErrPartyClosed
	}

	team, ok := party.Team(teamKey)
	if !ok {
		return nil, domain.ErrNotFound
	}

	if index < 0 || index >= len(team) {
		return nil, domain.ErrNotFound
	}

	slot := team[index]
	if slot == nil {
		return nil, domain.ErrSlotEmpty
	}

	if slot.UserID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	team[index] = nil

	return slot, nil
}

// BuildCompletionRecord 为组队生成封存记录的快照，
// 把两个小队中所有已占用的位置展平成参与者列表
func BuildCompletionRecord(party *domain.Party, now time.Time) *domain.CompletionRecord {
	return &domain.CompletionRecord{
		PartyID:       party.ID,
		CompletedAt:   now,
		ScheduledTime: party.ScheduledTime,
		EstimatedRuns: party.EstimatedRuns,
		Participants:  party.OccupiedSlots(),
	}
}
