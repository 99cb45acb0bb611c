package domain

import "time"

type EventType string

const (
	EventPartyCreated     EventType = "party_created"
	EventPartyDeleted     EventType = "party_deleted"
	EventPartyCompleted   EventType = "party_completed"
	EventSlotClaimed      EventType = "slot_claimed"
	EventSlotReleased     EventType = "slot_released"
	EventUserRegistered   EventType = "user_registered"
	EventUserLoggedIn     EventType = "user_logged_in"
	EventLoginFailed      EventType = "login_failed"
	EventCharacterAdded   EventType = "character_added"
	EventCharacterRenamed EventType = "character_renamed"
	EventCharacterRemoved EventType = "character_removed"
	EventPINReset         EventType = "pin_reset"
	EventSettingsUpdated  EventType = "settings_updated"
)

// Event 描述一次已经成功落库的状态变更，
// 由 roster 在持久化成功之后发出，notifier 负责投递
type Event struct {
	Type       EventType
	ActorName  string
	Party      *Party
	Slot       *Slot
	Character  *Character
	TargetName string
	OccurredAt time.Time
}
