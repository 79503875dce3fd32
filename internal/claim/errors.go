package claim

import (
	"errors"
	"fmt"
	"time"
)

// 领取流程的错误分类。ledger 和 verify 层抛出类型化错误，
// 只有 handler 层把它们翻译成对外的 HTTP 响应。
var (
	ErrNotFound          = errors.New("claim record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTemporary         = errors.New("verification temporarily unavailable")
)

// InvalidIdentityError 身份信息格式错误，指明具体哪个字段不合法
type InvalidIdentityError struct {
	Field string
	Value string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// ConflictError 唯一键已被窗口内的有效记录占用
type ConflictError struct {
	Remaining time.Duration
}

func (e *ConflictError) Error() string {
	if e.Remaining <= 0 {
		return "already claimed"
	}
	return fmt.Sprintf("already claimed, try again in %s", FormatRemaining(e.Remaining))
}

// PreconditionError 前置条件永久不满足，Guidance 提示用户如何补救
type PreconditionError struct {
	Reason   string
	Guidance string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}
