package domain

import "errors"

// 业务错误的统一分类，repository 和 roster 返回这些错误，
// handler 负责把它们翻译为用户可读的消息
var (
	ErrInvalidInput  = errors.New("无效的输入")
	ErrNotFound      = errors.New("目标不存在")
	ErrForbidden     = errors.New("权限不足")
	ErrAlreadyMember = errors.New("用户已在该组队中")
	ErrSlotTaken     = errors.New("该位置已被占用")
	ErrSlotEmpty     = errors.New("该位置是空的")
	ErrPartyClosed   = errors.New("该组队已经封存")
	ErrConflict      = errors.New("操作冲突，请重试")
	ErrUnavailable   = errors.New("服务暂时不可用")
)
