package roster

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Store 是 coordinator 所需的持久化能力，
// 带版本检查的更新方法在版本不匹配时必须返回 domain.ErrConflict
type Store interface {
	GetUserByID(id int64) (*domain.User, error)
	GetUserByName(name string) (*domain.User, error)
	CreateUser(user *domain.User) error
	UpdateUserCharacters(user *domain.User) error
	UpdateUserPIN(user *domain.User) error

	CreateParty(party *domain.Party) error
	GetPartyByID(id int64) (*domain.Party, error)
	GetOpenParties() ([]*domain.Party, error)
	UpdatePartyTeams(party *domain.Party) error
	DeleteParty(party *domain.Party) error
	FinalizeParty(party *domain.Party, record *domain.CompletionRecord) error

	GetAllCompletionRecords() ([]*domain.CompletionRecord, error)

	GetSettings() (*domain.Settings, error)
	UpdateSettings(settings *domain.Settings) error
}

// Dispatcher 负责投递领域事件对应的通知，投递失败不能影响业务操作
type Dispatcher interface {
	Dispatch(event *domain.Event)
}

// Feed 把变更后的完整文档推送给订阅者
type Feed interface {
	PublishParty(party *domain.Party)
	PublishPartyDeleted(id int64)
	PublishUser(user *domain.User)
	PublishCompletionRecord(record *domain.CompletionRecord)
}

// Coordinator 是组队系统的唯一入口，
// 负责串联「读取 → 校验与变更 → 带版本检查的持久化 → 推送与通知」
type Coordinator struct {
	cfg        *config.Config
	store      Store
	dispatcher Dispatcher
	feed       Feed
}

func NewCoordinator(cfg *config.Config, store Store, dispatcher Dispatcher, feed Feed) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		feed:       feed,
	}
}

func (c *Coordinator) retries() int {
	if c.cfg.Roster.ConflictRetries < 1 {
		return 1
	}
	return c.cfg.Roster.ConflictRetries
}

// mapStoreError 把 repository 的原始错误翻译为业务错误
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		return domain.ErrConflict
	default:
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
}

func (c *Coordinator) dispatch(event *domain.Event) {
	event.OccurredAt = time.Now()
	c.dispatcher.Dispatch(event)
}

// Login 用名称和 PIN 登录，名称不存在时自动注册（原系统行为）。
// PIN 错误返回 ErrForbidden
func (c *Coordinator) Login(name string, pin string) (*domain.User, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.ErrInvalidInput
	}

	user, err := c.store.GetUserByName(name)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, mapStoreError(err)
		}
		return c.register(name, pin)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		c.dispatch(&domain.Event{Type: domain.EventLoginFailed, ActorName: name})
		return nil, false, domain.ErrForbidden
	}

	c.dispatch(&domain.Event{Type: domain.EventUserLoggedIn, ActorName: user.Name})

	return user, false, nil
}

func (c *Coordinator) register(name string, pin string) (*domain.User, bool, error) {
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	user := &domain.User{
		Name:    name,
		PINHash: string(pinHash),
		Role:    domain.RoleUser,
	}

	if err := c.store.CreateUser(user); err != nil {
		// 两个客户端同时用一个新名称登录时，只有一个 INSERT 会成功，
		// 另一个按普通登录处理
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_name_key" {
			existing, getErr := c.store.GetUserByName(name)
			if getErr != nil {
				return nil, false, mapStoreError(getErr)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(existing.PINHash), []byte(pin)); err != nil {
				return nil, false, domain.ErrForbidden
			}
			return existing, false, nil
		}
		return nil, false, mapStoreError(err)
	}

	c.feed.PublishUser(user)
	c.dispatch(&domain.Event{Type: domain.EventUserRegistered, ActorName: user.Name})

	return user, true, nil
}

func (c *Coordinator) CreateParty(creator *domain.User, scheduledTime string, estimatedRuns string, twoTeams bool) (*domain.Party, error) {
	if strings.TrimSpace(scheduledTime) == "" || strings.TrimSpace(estimatedRuns) == "" {
		return nil, domain.ErrInvalidInput
	}

	party := &domain.Party{
		CreatorID:     creator.ID,
		CreatorName:   creator.Name,
		ScheduledTime: scheduledTime,
		EstimatedRuns: estimatedRuns,
		Status:        domain.PartyStatusOpen,
		IsTwoTeams:    twoTeams,
		Team1:         domain.NewTeam(),
	}
	if twoTeams {
		party.Team2 = domain.NewTeam()
	}

	if err := c.store.CreateParty(party); err != nil {
		return nil, mapStoreError(err)
	}

	c.feed.PublishParty(party)
	c.dispatch(&domain.Event{Type: domain.EventPartyCreated, ActorName: creator.Name, Party: party})

	return party, nil
}

func (c *Coordinator) ListOpenParties() ([]*domain.Party, error) {
	parties, err := c.store.GetOpenParties()
	if err != nil {
		return nil, mapStoreError(err)
	}
	return parties, nil
}

func (c *Coordinator) GetParty(id int64) (*domain.Party, error) {
	party, err := c.store.GetPartyByID(id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return party, nil
}

// DeleteParty 删除开放中的组队。删除和占位一样要走版本检查：
// 精确条件的 DELETE 没有命中任何行时重新读取，
// 如果组队在这期间被封存，重读的校验会返回 ErrPartyClosed，
// 已封存的组队和它的封存记录都不会被删掉
func (c *Coordinator) DeleteParty(id int64, actor *domain.User) error {
	for attempt := 0; attempt < c.retries(); attempt++ {
		party, err := c.store.GetPartyByID(id)
		if err != nil {
			return mapStoreError(err)
		}

		if party.Status != domain.PartyStatusOpen {
			return domain.ErrPartyClosed
		}

		if party.CreatorID != actor.ID && !actor.IsAdmin() {
			return domain.ErrForbidden
		}

		err = c.store.DeleteParty(party)
		if err == nil {
			c.feed.PublishPartyDeleted(id)
			c.dispatch(&domain.Event{Type: domain.EventPartyDeleted, ActorName: actor.Name, Party: party})
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return mapStoreError(err)
		}
	}

	return domain.ErrConflict
}

// ClaimSlot 占位。版本冲突意味着有并发写入者刚刚修改了这个组队，
// 此时基于最新状态重试：如果位置已被抢走或用户已在队中，
// 业务错误会在重试的校验阶段立刻暴露出来，不会被吞掉
func (c *Coordinator) ClaimSlot(partyID int64, teamKey domain.TeamKey, index int, user *domain.User, char domain.Character) (*domain.Party, error) {
	for attempt := 0; attempt < c.retries(); attempt++ {
		party, err := c.store.GetPartyByID(partyID)
		if err != nil {
			return nil, mapStoreError(err)
		}

		if err := ClaimSlot(party, teamKey, index, user, char); err != nil {
			return nil, err
		}

		err = c.store.UpdatePartyTeams(party)
		if err == nil {
			c.feed.PublishParty(party)
			slot, _ := party.Team(teamKey)
			c.dispatch(&domain.Event{Type: domain.EventSlotClaimed, ActorName: user.Name, Party: party, Slot: slot[index]})
			return party, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, mapStoreError(err)
		}
	}

	return nil, domain.ErrConflict
}

func (c *Coordinator) ReleaseSlot(partyID int64, teamKey domain.TeamKey, index int, actor *domain.User) (*domain.Party, error) {
	for attempt := 0; attempt < c.retries(); attempt++ {
		party, err := c.store.GetPartyByID(partyID)
		if err != nil {
			return nil, mapStoreError(err)
		}

		released, err := ReleaseSlot(party, teamKey, index, actor)
		if err != nil {
			return nil, err
		}

		err = c.store.UpdatePartyTeams(party)
		if err == nil {
			c.feed.PublishParty(party)
			c.dispatch(&domain.Event{Type: domain.EventSlotReleased, ActorName: actor.Name, Party: party, Slot: released})
			return party, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, mapStoreError(err)
		}
	}

	return nil, domain.ErrConflict
}

// CompleteParty 封存组队：生成参与者快照并写入封存记录，
// 同时把状态置为已完成，两者在同一个事务中落库
func (c *Coordinator) CompleteParty(partyID int64, actor *domain.User) (*domain.Party, *domain.CompletionRecord, error) {
	for attempt := 0; attempt < c.retries(); attempt++ {
		party, err := c.store.GetPartyByID(partyID)
		if err != nil {
			return nil, nil, mapStoreError(err)
		}

		if party.Status != domain.PartyStatusOpen {
			return nil, nil, domain.ErrPartyClosed
		}

		if party.CreatorID != actor.ID && !actor.IsAdmin() {
			return nil, nil, domain.ErrForbidden
		}

		record := BuildCompletionRecord(party, time.Now())

		err = c.store.FinalizeParty(party, record)
		if err == nil {
			c.feed.PublishParty(party)
			c.feed.PublishCompletionRecord(record)
			c.dispatch(&domain.Event{Type: domain.EventPartyCompleted, ActorName: actor.Name, Party: party})
			return party, record, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, nil, mapStoreError(err)
		}
	}

	return nil, nil, domain.ErrConflict
}

func (c *Coordinator) ListCompletionRecords() ([]*domain.CompletionRecord, error) {
	records, err := c.store.GetAllCompletionRecords()
	if err != nil {
		return nil, mapStoreError(err)
	}
	return records, nil
}

// ResetUserPIN 管理员重设某个用户的 PIN，
// 只更新 PIN 字段，不会覆盖该用户正在编辑的角色列表
func (c *Coordinator) ResetUserPIN(targetID int64, newPIN string, actor *domain.User) error {
	pinHash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	for attempt := 0; attempt < c.retries(); attempt++ {
		user, err := c.store.GetUserByID(targetID)
		if err != nil {
			return mapStoreError(err)
		}

		user.PINHash = string(pinHash)

		err = c.store.UpdateUserPIN(user)
		if err == nil {
			c.feed.PublishUser(user)
			c.dispatch(&domain.Event{Type: domain.EventPINReset, ActorName: actor.Name, TargetName: user.Name})
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return mapStoreError(err)
		}
	}

	return domain.ErrConflict
}

func (c *Coordinator) GetSettings() (*domain.Settings, error) {
	settings, err := c.store.GetSettings()
	if err != nil {
		return nil, mapStoreError(err)
	}
	return settings, nil
}

func (c *Coordinator) SaveSettings(logURL string, notifyURL string, actor *domain.User) (*domain.Settings, error) {
	for attempt := 0; attempt < c.retries(); attempt++ {
		settings, err := c.store.GetSettings()
		if err != nil {
			return nil, mapStoreError(err)
		}

		settings.LogWebhookURL = logURL
		settings.NotifyWebhookURL = notifyURL

		err = c.store.UpdateSettings(settings)
		if err == nil {
			c.dispatch(&domain.Event{Type: domain.EventSettingsUpdated, ActorName: actor.Name})
			return settings, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, mapStoreError(err)
		}
	}

	return nil, domain.ErrConflict
}
