package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	query := `
		SELECT name, pin_hash, role, characters, created_at, version
		FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	var characters []byte
	dst := []any{&user.Name, &user.PINHash, &user.Role, &characters, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	// 角色列表中可能存在旧格式的裸字符串，Character 的反序列化会统一处理
	if err := json.Unmarshal(characters, &user.Characters); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByName(name string) (*domain.User, error) {
	query := `
		SELECT id, pin_hash, role, characters, created_at, version
		FROM users WHERE name = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		Name: name,
	}

	var characters []byte
	dst := []any{&user.ID, &user.PINHash, &user.Role, &characters, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(characters, &user.Characters); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	query := `
		SELECT id, name, pin_hash, role, characters, created_at, version FROM users
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		var characters []byte
		dst := []any{&user.ID, &user.Name, &user.PINHash, &user.Role, &characters, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(characters, &user.Characters); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if user.Characters == nil {
		user.Characters = make([]domain.Character, 0)
	}

	characters, err := json.Marshal(user.Characters)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (name, pin_hash, role, characters)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{user.Name, user.PINHash, user.Role, characters}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

// UpdateUserCharacters 只更新角色列表这一个字段，
// 避免与管理员重设 PIN 的操作互相覆盖
func (r *Repository) UpdateUserCharacters(user *domain.User) error {
	query := `
		UPDATE users
		SET
			characters = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	characters, err := json.Marshal(user.Characters)
	if err != nil {
		return err
	}

	args := []any{characters, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		// 更新前刚读到过这条记录，没有命中说明版本已被其他写入者推进
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}

	return nil
}

// UpdateUserPIN 只更新 PIN 这一个字段
func (r *Repository) UpdateUserPIN(user *domain.User) error {
	query := `
		UPDATE users
		SET
			pin_hash = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{user.PINHash, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}

	return nil
}
