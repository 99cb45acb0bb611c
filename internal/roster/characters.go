package roster

import (
	"errors"
	"strings"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

// AddCharacter 给用户的角色库追加一个角色。
// 名称允许重复，这是原系统的既定行为，不做去重
func (c *Coordinator) AddCharacter(userID int64, name string, class domain.ClassID, actor *domain.User) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || !class.IsValid() {
		return nil, domain.ErrInvalidInput
	}

	char := domain.Character{Name: name, Class: class}

	return c.updateCharacters(userID, func(user *domain.User) error {
		user.Characters = append(user.Characters, char)
		return nil
	}, &domain.Event{Type: domain.EventCharacterAdded, ActorName: actor.Name, Character: &char})
}

// RenameCharacter 修改角色名称，职业保持不变（旧数据中的未知职业也一样保留）
func (c *Coordinator) RenameCharacter(userID int64, index int, newName string, actor *domain.User) (*domain.User, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.ErrInvalidInput
	}

	var renamed domain.Character

	user, err := c.updateCharacters(userID, func(user *domain.User) error {
		if index < 0 || index >= len(user.Characters) {
			return domain.ErrNotFound
		}
		user.Characters[index].Name = newName
		renamed = user.Characters[index]
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	c.dispatch(&domain.Event{Type: domain.EventCharacterRenamed, ActorName: actor.Name, Character: &renamed})

	return user, nil
}

// RemoveCharacter 删除所有名称匹配的角色。
// 名称允许重复，因此一次删除可能移除多个条目，这同样是原系统的既定行为
func (c *Coordinator) RemoveCharacter(userID int64, name string, actor *domain.User) (*domain.User, error) {
	return c.updateCharacters(userID, func(user *domain.User) error {
		kept := make([]domain.Character, 0, len(user.Characters))
		removed := false
		for _, char := range user.Characters {
			if char.Name == name {
				removed = true
				continue
			}
			kept = append(kept, char)
		}
		if !removed {
			return domain.ErrNotFound
		}
		user.Characters = kept
		return nil
	}, &domain.Event{Type: domain.EventCharacterRemoved, ActorName: actor.Name, Character: &domain.Character{Name: name}})
}

// updateCharacters 读取用户文档、应用变更并带版本检查地写回，
// 版本冲突时基于最新状态重试
func (c *Coordinator) updateCharacters(userID int64, mutate func(*domain.User) error, event *domain.Event) (*domain.User, error) {
	for attempt := 0; attempt < c.retries(); attempt++ {
		user, err := c.store.GetUserByID(userID)
		if err != nil {
			return nil, mapStoreError(err)
		}

		if err := mutate(user); err != nil {
			return nil, err
		}

		err = c.store.UpdateUserCharacters(user)
		if err == nil {
			c.feed.PublishUser(user)
			if event != nil {
				c.dispatch(event)
			}
			return user, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, mapStoreError(err)
		}
	}

	return nil, domain.ErrConflict
}
