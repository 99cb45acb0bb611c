package roster

import (
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

/**********************************************
 * 带版本检查的内存 Store，用于模拟并发写入
 **********************************************/

type memoryStore struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	parties  map[int64]*domain.Party
	records  []*domain.CompletionRecord
	settings *domain.Settings
	nextID   int64

	// 注入故障：非零时 UpdatePartyTeams 先返回这么多次冲突
	teamConflicts int
	// 注入并发封存：删除落库前先把目标组队置为已完成
	finalizeBeforeDelete bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[int64]*domain.User),
		parties:  make(map[int64]*domain.Party),
		settings: &domain.Settings{},
		nextID:   1,
	}
}

func copyTeam(team domain.Team) domain.Team {
	if team == nil {
		return nil
	}
	out := make(domain.Team, len(team))
	for i, slot := range team {
		if slot != nil {
			s := *slot
			out[i] = &s
		}
	}
	return out
}

func copyParty(p *domain.Party) *domain.Party {
	out := *p
	out.Team1 = copyTeam(p.Team1)
	out.Team2 = copyTeam(p.Team2)
	return &out
}

func copyUser(u *domain.User) *domain.User {
	out := *u
	out.Characters = append([]domain.Character(nil), u.Characters...)
	return &out
}

func (s *memoryStore) GetUserByID(id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyUser(user), nil
}

func (s *memoryStore) GetUserByName(name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Name == name {
			return copyUser(user), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryStore) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	user.Version = 1
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memoryStore) UpdateUserCharacters(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok || current.Version != user.Version {
		return domain.ErrConflict
	}
	current.Characters = append([]domain.Character(nil), user.Characters...)
	current.Version++
	user.Version = current.Version
	return nil
}

func (s *memoryStore) UpdateUserPIN(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok || current.Version != user.Version {
		return domain.ErrConflict
	}
	current.PINHash = user.PINHash
	current.Version++
	user.Version = current.Version
	return nil
}

func (s *memoryStore) CreateParty(party *domain.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	party.ID = s.nextID
	s.nextID++
	party.Version = 1
	s.parties[party.ID] = copyParty(party)
	return nil
}

func (s *memoryStore) GetPartyByID(id int64) (*domain.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	party, ok := s.parties[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyParty(party), nil
}

func (s *memoryStore) GetOpenParties() ([]*domain.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parties := make([]*domain.Party, 0)
	for _, party := range s.parties {
		if party.Status == domain.PartyStatusOpen {
			parties = append(parties, copyParty(party))
		}
	}
	return parties, nil
}

func (s *memoryStore) UpdatePartyTeams(party *domain.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.teamConflicts > 0 {
		s.teamConflicts--
		return domain.ErrConflict
	}
	current, ok := s.parties[party.ID]
	if !ok || current.Status != domain.PartyStatusOpen || current.Version != party.Version {
		return domain.ErrConflict
	}
	current.Team1 = copyTeam(party.Team1)
	current.Team2 = copyTeam(party.Team2)
	current.Version++
	party.Version = current.Version
	return nil
}

func (s *memoryStore) DeleteParty(party *domain.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalizeBeforeDelete {
		s.finalizeBeforeDelete = false
		if current, ok := s.parties[party.ID]; ok {
			current.Status = domain.PartyStatusCompleted
			current.Version++
		}
	}
	current, ok := s.parties[party.ID]
	if !ok || current.Status != domain.PartyStatusOpen || current.Version != party.Version {
		return domain.ErrConflict
	}
	delete(s.parties, party.ID)
	return nil
}

func (s *memoryStore) FinalizeParty(party *domain.Party, record *domain.CompletionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.parties[party.ID]
	if !ok || current.Status != domain.PartyStatusOpen || current.Version != party.Version {
		return domain.ErrConflict
	}
	current.Status = domain.PartyStatusCompleted
	current.Version++
	party.Status = domain.PartyStatusCompleted
	party.Version = current.Version
	record.ID = s.nextID
	s.nextID++
	s.records = append(s.records, record)
	return nil
}

func (s *memoryStore) GetAllCompletionRecords() ([]*domain.CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.CompletionRecord(nil), s.records...), nil
}

func (s *memoryStore) GetSettings() (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *s.settings
	return &out, nil
}

func (s *memoryStore) UpdateSettings(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.Version != settings.Version {
		return domain.ErrConflict
	}
	updated := *settings
	updated.Version++
	s.settings = &updated
	settings.Version = updated.Version
	return nil
}

/**********************************************
 * 记录型的 Dispatcher 和 Feed
 **********************************************/

type recordingDispatcher struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (d *recordingDispatcher) Dispatch(event *domain.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) countByType(t domain.EventType) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, event := range d.events {
		if event.Type == t {
			n++
		}
	}
	return n
}

type noopFeed struct{}

func (noopFeed) PublishParty(*domain.Party)                       {}
func (noopFeed) PublishPartyDeleted(int64)                        {}
func (noopFeed) PublishUser(*domain.User)                         {}
func (noopFeed) PublishCompletionRecord(*domain.CompletionRecord) {}

func newTestCoordinator(store Store) (*Coordinator, *recordingDispatcher) {
	cfg := &config.Config{}
	cfg.Roster.ConflictRetries = 3
	dispatcher := &recordingDispatcher{}
	return NewCoordinator(cfg, store, dispatcher, noopFeed{}), dispatcher
}

func mustCreateUser(t *testing.T, store *memoryStore, name string, role domain.Role, chars ...domain.Character) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Role: role, Characters: chars}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func mustCreateParty(t *testing.T, c *Coordinator, creator *domain.User, twoTeams bool) *domain.Party {
	t.Helper()
	party, err := c.CreateParty(creator, "2026-09-05T20:00", "3", twoTeams)
	if err != nil {
		t.Fatalf("CreateParty() error = %v", err)
	}
	return party
}

/**********************************************
 * 并发语义
 **********************************************/

func TestClaimSlotConcurrentSameSlot(t *testing.T) {
	store := newMemoryStore()
	c, dispatcher := newTestCoordinator(store)

	char := domain.Character{Name: "小剑", Class: domain.ClassGladiator}
	alice := mustCreateUser(t, store, "alice", domain.RoleUser, char)
	bob := mustCreateUser(t, store, "bob", domain.RoleUser, char)
	creator := mustCreateUser(t, store, "creator", domain.RoleUser)
	party := mustCreateParty(t, c, creator, false)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = c.ClaimSlot(party.ID, domain.TeamKey1, 0, alice, char)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = c.ClaimSlot(party.ID, domain.TeamKey1, 0, bob, char)
	}()
	wg.Wait()

	// 恰好一个成功，另一个在重试时看到位置已被占用
	var okCount, takenCount int
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, domain.ErrSlotTaken):
			takenCount++
		default:
			t.Errorf("意外的错误: %v", err)
		}
	}
	if okCount != 1 || takenCount != 1 {
		t.Fatalf("成功 %d 次、ErrSlotTaken %d 次, 期望各 1 次", okCount, takenCount)
	}

	final, err := store.GetPartyByID(party.ID)
	if err != nil {
		t.Fatalf("GetPartyByID() error = %v", err)
	}
	if got := len(final.OccupiedSlots()); got != 1 {
		t.Errorf("占用位置数 = %d, 期望 1", got)
	}
	if got := dispatcher.countByType(domain.EventSlotClaimed); got != 1 {
		t.Errorf("slot_claimed 事件数 = %d, 期望 1", got)
	}
}

func TestClaimSlotConcurrentDistinctSlots(t *testing.T) {
	store := newMemoryStore()
	c, _ := newTestCoordinator(store)

	char := domain.Character{Name: "小剑", Class: domain.ClassGladiator}
	alice := mustCreateUser(t, store, "alice", domain.RoleUser, char)
	bob := mustCreateUser(t, store, "bob", domain.RoleUser, char)
	creator := mustCreateUser(t, store, "creator", domain.RoleUser)
	party := mustCreateParty(t, c, creator, false)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = c.ClaimSlot(party.ID, domain.TeamKey1, 0, alice, char)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = c.ClaimSlot(party.ID, domain.TeamKey1, 1, bob, char)
	}()
	wg.Wait()

	// 不同位置的并发占用在重试后都应成功
	for i, err := range errs {
		if err != nil {
			t.Errorf("占用 %d error = %v", i, err)
		}
	}

	final, err := store.GetPartyByID(party.ID)
	if err != nil {
		t.Fatalf("GetPartyByID() error = %v", err)
	}
	if got := len(final.OccupiedSlots()); got != 2 {
		t.Errorf("占用位置数 = %d, 期望 2", got)
	}
}

func TestClaimSlotRetryExhaustion(t *testing.T) {
	store := newMemoryStore()
	c, dispatcher := newTestCoordinator(store)

	char := domain.Character{Name: "小剑", Class: domain.ClassGladiator}
	alice := mustCreateUser(t, store, "alice", domain.RoleUser, char)
	creator := mustCreateUser(t, store, "creator", domain.RoleUser)
	party := mustCreateParty(t, c, creator, false)

	// 注入超过重试次数的冲突
	store.mu.Lock()
	store.teamConflicts = 10
	store.mu.Unlock()

	if _, err := c.ClaimSlot(party.ID, domain.TeamKey1, 0, alice, char); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("ClaimSlot() error = %v, 期望 ErrConflict", err)
	}
	if got := dispatcher.countByType(domain.EventSlotClaimed); got != 0 {
		t.Errorf("持久化失败仍派发了 %d 个 slot_claimed 事件", got)
	}
}

func TestClaimSlotAlreadyMember(t *testing.T) {
	store := newMemoryStore()
	c, _ := newTestCoordinator(store)

	char := domain.Character{Name: "小剑", Class: domain.ClassGladiator}
	alice := mustCreateUser(t, store, "alice", domain.RoleUser, char)
	creator := mustCreateUser(t, store, "creator", domain.RoleUser)
	party := mustCreateParty(t, c, creator, true)

	if _, err := c.ClaimSlot(party.ID, domain.TeamKey1, 0, alice, char); err != nil {
		t.Fatalf("ClaimSlot() error = %v", err)
	}
	if _, err := c.ClaimSlot(party.ID, domain.TeamKey2, 0, alice, char); !errors.Is(err, domain.ErrAlreadyMember) {
		t.Errorf("ClaimSlot() error = %v, 期望 ErrAlreadyMember", err)
	}
}

/**********************************************
 * 组队生命周期
 **********************************************/

func TestCompleteParty(t *testing.T) {
	store := newMemoryStore()
	c, dispatcher := newTestCoordinator(store)

	char := domain.Character{Name: "小剑", Class: domain.ClassGladiator}
	alice := mustCreateUser(t, store, "alice", domain.RoleUser, char)
	creator := mustCreateUser(t, store, "creator", domain.RoleUser)
	outsider := mustCreateUser(t, store, "outsider", domain.RoleUser)
	admin := mustCreateUser(t, store, "Wolf", domain.RoleAdmin)

	party := mustCreateParty(t, c, creator, false)
	if _, err := c.ClaimSlot(party.ID, domain.TeamKey1, 0, alice, char); err != nil {
		t.Fatalf("ClaimSlot() error = %v", err)
	}

	// 非创建者且非管理员不能封存
	if _, _, err := c.CompleteParty(party.ID, outsider); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("CompleteParty() error = %v, 期望 ErrForbidden", err)
	}

	completed, record, err := c.CompleteParty(party.ID, creator)
	if err != nil {
		t.Fatalf("CompleteParty() error = %v", err)
	}
	if completed.Status != domain.PartyStatusCompleted {
		t.Errorf("Status = %s, 期望 completed", completed.Status)
	}
	if len(record.Participants) != 1 || record.Participants[0].UserID != alice.ID {
		t.Errorf("封存记录参与者 = %+v, 期望只有 alice", record.Participants)
	}

	// 封存后的组队拒绝一切修改
	if _, err := c.ClaimSlot(party.ID, domain.TeamKey1, 1, admin, char); !errors.Is(err, domain.ErrPartyClosed) {
		t.Errorf("封存后 ClaimSlot() error = %v, 期望 ErrPartyClosed", err)
	}
	if _, _, err := c.CompleteParty(party.ID, admin); !errors.Is(err, domain.ErrPartyClosed) {
		t.Errorf("重复封存 error = %v, 期望 ErrPartyClosed", err)
	}
	if err := c.DeleteParty(party.ID, admin); !errors.Is(err, domain.ErrPartyClosed) {
		t.Errorf("封存后 DeleteParty() error = %v, 期望 ErrPartyClosed", err)
	}

	records, err := c.ListCompletionRecords()
	if err != nil {
		t.Fatalf("ListCompletionRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("封存记录数 = %d, 期望 1", len(records))
	}
	if got := dispatcher.countByType(domain.EventPartyCompleted); got != 1 {
		t.Errorf("party_completed 事件数 = %d, 期望 1", got)
	}

	// 封存的组队不再出现在开放列表中
	open, err := c.ListOpenParties()
	if err != nil {
		t.Fatalf("ListOpenParties() error = %v", err)
	}
	if len(open) != 0 {
		t.Errorf("开放组队数 = %d, 期望 0", len(open))
	}
}

func TestDeleteParty(t *testing.T) {
	store := newMemoryStore()
	c, _ := newTestCoordinator(store)

	creator := mustCreateUser(t, store, "creator", domain.RoleUser)
	outsider := mustCreateUser(t, store, "outsider", domain.RoleUser)
	admin := mustCreateUser(t, store, "Wolf", domain.RoleAdmin)

	party := mustCreateParty(t, c, creator, false)
	if err := c.DeleteParty(party.ID, outsider); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("DeleteParty() error = %v, 期望 ErrForbidden", err)
	}
	if err := c.DeleteParty(party.ID, creator); err != nil {
		t.Fatalf("DeleteParty() error = %v", err)
	}
	if err := c.DeleteParty(party.ID, admin); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("删除不存在的组队 error = %v, 期望 ErrNotFound", err)
	}

	// 管理员可以删除任何人的组队
	party2 := mustCreateParty(t, c, creator, false)
	if err := c.DeleteParty(party2.ID, admin); err != nil {
		t.Fatalf("管理员 DeleteParty() error = %v", err)
	}
}

func TestDeletePartyConcurrentFinalize(t *testing.T) {
	store := newMemoryStore()
	c, dispatcher := newTestCoordinator(store)

	creator := mustCreateUser(t, store, "creator", domain.RoleUser)
	party := mustCreateParty(t, c, creator, false)

	// 在读取快照之后、删除落库之前，另一个写入者封存了这个组队
	store.mu.Lock()
	store.finalizeBeforeDelete = true
	store.mu.Unlock()

	if err := c.DeleteParty(party.ID, creator); !errors.Is(err, domain.ErrPartyClosed) {
		t.Errorf("DeleteParty() error = %v, 期望 ErrPartyClosed", err)
	}

	// 已封存的组队必须保留
	final, err := store.GetPartyByID(party.ID)
	if err != nil {
		t.Fatalf("删除失败后组队行不存在: %v", err)
	}
	if final.Status != domain.PartyStatusCompleted {
		t.Errorf("Status = %s, 期望 completed", final.Status)
	}
	if got := dispatcher.countByType(domain.EventPartyDeleted); got != 0 {
		t.Errorf("删除失败仍派发了 %d 个 party_deleted 事件", got)
	}
}

/**********************************************
 * 登录与注册
 **********************************************/

func TestLogin(t *testing.T) {
	store := newMemoryStore()
	c, dispatcher := newTestCoordinator(store)

	// 名称不存在时自动注册
	user, created, err := c.Login("alice", "1234")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !created {
		t.Error("created = false, 期望首次登录自动注册")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte("1234")); err != nil {
		t.Error("注册时没有正确散列 PIN")
	}

	// 再次登录走校验
	if _, created, err := c.Login("alice", "1234"); err != nil || created {
		t.Errorf("Login() = (created=%v, err=%v), 期望 (false, nil)", created, err)
	}

	// PIN 错误
	if _, _, err := c.Login("alice", "0000"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Login() error = %v, 期望 ErrForbidden", err)
	}
	if got := dispatcher.countByType(domain.EventLoginFailed); got != 1 {
		t.Errorf("login_failed 事件数 = %d, 期望 1", got)
	}

	// 空名称
	if _, _, err := c.Login("   ", "1234"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Login() error = %v, 期望 ErrInvalidInput", err)
	}
}

func TestResetUserPIN(t *testing.T) {
	store := newMemoryStore()
	c, _ := newTestCoordinator(store)

	user := mustCreateUser(t, store, "alice", domain.RoleUser, domain.Character{Name: "小剑", Class: domain.ClassGladiator})
	admin := mustCreateUser(t, store, "Wolf", domain.RoleAdmin)

	if err := c.ResetUserPIN(user.ID, "9999", admin); err != nil {
		t.Fatalf("ResetUserPIN() error = %v", err)
	}

	updated, err := store.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PINHash), []byte("9999")); err != nil {
		t.Error("重设后的 PIN 校验失败")
	}
	// 只更新 PIN，角色列表保持不变
	if len(updated.Characters) != 1 {
		t.Errorf("角色数量 = %d, 期望 1", len(updated.Characters))
	}

	if err := c.ResetUserPIN(9999, "1234", admin); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ResetUserPIN() error = %v, 期望 ErrNotFound", err)
	}
}

/**********************************************
 * 角色库
 **********************************************/

func TestCharacterOperations(t *testing.T) {
	store := newMemoryStore()
	c, _ := newTestCoordinator(store)

	user := mustCreateUser(t, store, "alice", domain.RoleUser)

	t.Run("新增角色", func(t *testing.T) {
		updated, err := c.AddCharacter(user.ID, "小剑", domain.ClassGladiator, user)
		if err != nil {
			t.Fatalf("AddCharacter() error = %v", err)
		}
		if len(updated.Characters) != 1 {
			t.Fatalf("角色数量 = %d, 期望 1", len(updated.Characters))
		}

		// 名称允许重复
		updated, err = c.AddCharacter(user.ID, "小剑", domain.ClassCleric, user)
		if err != nil {
			t.Fatalf("AddCharacter() error = %v", err)
		}
		if len(updated.Characters) != 2 {
			t.Errorf("角色数量 = %d, 期望 2", len(updated.Characters))
		}
	})

	t.Run("非法输入", func(t *testing.T) {
		if _, err := c.AddCharacter(user.ID, "  ", domain.ClassGladiator, user); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("AddCharacter() error = %v, 期望 ErrInvalidInput", err)
		}
		if _, err := c.AddCharacter(user.ID, "小弓", domain.ClassID("bard"), user); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("AddCharacter() error = %v, 期望 ErrInvalidInput", err)
		}
	})

	t.Run("改名保持职业不变", func(t *testing.T) {
		updated, err := c.RenameCharacter(user.ID, 1, "大剑", user)
		if err != nil {
			t.Fatalf("RenameCharacter() error = %v", err)
		}
		if updated.Characters[1].Name != "大剑" || updated.Characters[1].Class != domain.ClassCleric {
			t.Errorf("改名后 = %+v, 期望名称大剑、职业不变", updated.Characters[1])
		}

		if _, err := c.RenameCharacter(user.ID, 5, "x", user); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("RenameCharacter() error = %v, 期望 ErrNotFound", err)
		}
	})

	t.Run("删除全部同名角色", func(t *testing.T) {
		// 再加一个同名角色，删除时应全部移除
		if _, err := c.AddCharacter(user.ID, "小剑", domain.ClassRanger, user); err != nil {
			t.Fatalf("AddCharacter() error = %v", err)
		}
		updated, err := c.RemoveCharacter(user.ID, "小剑", user)
		if err != nil {
			t.Fatalf("RemoveCharacter() error = %v", err)
		}
		for _, char := range updated.Characters {
			if char.Name == "小剑" {
				t.Errorf("删除后仍残留同名角色: %+v", char)
			}
		}
		if len(updated.Characters) != 1 {
			t.Errorf("角色数量 = %d, 期望 1", len(updated.Characters))
		}

		if _, err := c.RemoveCharacter(user.ID, "不存在", user); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("RemoveCharacter() error = %v, 期望 ErrNotFound", err)
		}
	})
}

/**********************************************
 * 系统设置
 **********************************************/

func TestSaveSettings(t *testing.T) {
	store := newMemoryStore()
	c, dispatcher := newTestCoordinator(store)

	admin := mustCreateUser(t, store, "Wolf", domain.RoleAdmin)

	settings, err := c.SaveSettings("https://example.com/log", "https://example.com/notify", admin)
	if err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if settings.LogWebhookURL != "https://example.com/log" || settings.NotifyWebhookURL != "https://example.com/notify" {
		t.Errorf("保存后的设置 = %+v", settings)
	}

	loaded, err := c.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if loaded.LogWebhookURL != settings.LogWebhookURL {
		t.Errorf("读取到的设置 = %+v", loaded)
	}
	if got := dispatcher.countByType(domain.EventSettingsUpdated); got != 1 {
		t.Errorf("settings_updated 事件数 = %d, 期望 1", got)
	}
}
