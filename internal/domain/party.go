package domain

import "time"

type PartyStatus string

const (
	PartyStatusOpen      PartyStatus = "open"
	PartyStatusCompleted PartyStatus = "completed"
)

type TeamKey string

const (
	TeamKey1 TeamKey = "team1"
	TeamKey2 TeamKey = "team2"
)

// TeamSize 每个小队的固定位置数
const TeamSize = 4

// Slot 队伍中的一个位置，nil 表示空位
type Slot struct {
	UserID    int64   `json:"userId"`
	UserName  string  `json:"userName"`
	CharName  string  `json:"charName"`
	CharClass ClassID `json:"charClass"`
}

type Team []*Slot

// NewTeam 返回一个全空的小队
func NewTeam() Team {
	return make(Team, TeamSize)
}

type Party struct {
	ID            int64       `json:"id"`
	CreatorID     int64       `json:"creatorId"`
	CreatorName   string      `json:"creatorName"`
	ScheduledTime string      `json:"scheduledTime"`
	EstimatedRuns string      `json:"estimatedRuns"`
	Status        PartyStatus `json:"status"`
	IsTwoTeams    bool        `json:"isTwoTeams"`
	Team1         Team        `json:"team1"`
	Team2         Team        `json:"team2,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	Version       int32       `json:"-"`
}

// Team 根据 key 返回对应的小队，第二小队只在开启双队时存在
func (p *Party) Team(key TeamKey) (Team, bool) {
	switch key {
	case TeamKey1:
		return p.Team1, true
	case TeamKey2:
		if !p.IsTwoTeams {
			return nil, false
		}
		return p.Team2, true
	default:
		return nil, false
	}
}

// OccupiedSlots 按 Team1、Team2 的顺序返回所有已被占用的位置
func (p *Party) OccupiedSlots() []*Slot {
	slots := make([]*Slot, 0)
	for _, slot := range p.Team1 {
		if slot != nil {
			slots = append(slots, slot)
		}
	}
	for _, slot := range p.Team2 {
		if slot != nil {
			slots = append(slots, slot)
		}
	}
	return slots
}

// HasMember 检查某个用户是否已经占用了该组队中的任意位置（一人一位）
func (p *Party) HasMember(userID int64) bool {
	for _, slot := range p.OccupiedSlots() {
		if slot.UserID == userID {
			return true
		}
	}
	return false
}
