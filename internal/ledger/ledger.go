package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger 领取台账。Insert 的活跃记录检查和写入在同一个事务内，
// 以 claim_key 互斥行为串行化点，保证同一唯一键并发领取最多成功一次
type Ledger struct {
	db *gorm.DB
}

// New 创建台账
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

var activeStatuses = []model.ClaimStatus{model.ClaimStatusPending, model.ClaimStatusClaimed}

// lockForUpdate 行级锁。SQLite 不支持 FOR UPDATE 语法，
// 但其写事务本身就是单写者串行的
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// FindActive 查找窗口内处于 pending/claimed 的记录，没有返回 nil
func (l *Ledger) FindActive(kind model.ClaimKind, subjectKey string, window time.Duration, asOf time.Time) (*model.ClaimRecord, error) {
	return findActiveTx(l.db, kind, subjectKey, window, asOf)
}

func findActiveTx(tx *gorm.DB, kind model.ClaimKind, subjectKey string, window time.Duration, asOf time.Time) (*model.ClaimRecord, error) {
	var record model.ClaimRecord
	err := tx.Where("kind = ? AND subject_key = ? AND status IN ? AND created_at > ?",
		kind, subjectKey, activeStatuses, asOf.Add(-window)).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active claim: %w", err)
	}
	return &record, nil
}

// Insert 原子的条件插入：锁住唯一键互斥行后重查活跃记录和外部凭证，
// 都无冲突才写入。竞争失败方收到 ConflictError，绝不静默覆盖
func (l *Ledger) Insert(record *model.ClaimRecord, window time.Duration, asOf time.Time) error {
	if record.Id == "" {
		record.Id = uuid.NewString()
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		// upsert 互斥行再锁住它，(kind, subject_key) 唯一索引保证只有一行可锁
		key := model.ClaimKey{Kind: record.Kind, SubjectKey: record.SubjectKey}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "subject_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": asOf}),
		}).Create(&key).Error; err != nil {
			return fmt.Errorf("failed to upsert claim key: %w", err)
		}
		if err := lockForUpdate(tx).
			Where("kind = ? AND subject_key = ?", record.Kind, record.SubjectKey).
			First(&model.ClaimKey{}).Error; err != nil {
			return fmt.Errorf("failed to lock claim key: %w", err)
		}

		// 窗口内已有有效记录
		existing, err := findActiveTx(tx, record.Kind, record.SubjectKey, window, asOf)
		if err != nil {
			return err
		}
		if existing != nil {
			return &claim.ConflictError{Remaining: claim.Remaining(existing.CreatedAt, asOf, window)}
		}

		// 同一外部凭证（交易哈希等）已经兑付过，换个金额也不行
		if record.ExternalRef != nil {
			var count int64
			if err := tx.Model(&model.ClaimRecord{}).
				Where("kind = ? AND external_ref = ? AND status IN ?",
					record.Kind, *record.ExternalRef,
					[]model.ClaimStatus{model.ClaimStatusPending, model.ClaimStatusClaimed, model.ClaimStatusPaid}).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check external ref: %w", err)
			}
			if count > 0 {
				return &claim.ConflictError{}
			}
		}

		record.CreatedAt = asOf
		record.UpdatedAt = asOf
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to insert claim record: %w", err)
		}
		return nil
	})
}

// Refresh 管理员在窗口内重复发放时刷新现有 pending 记录的 created_at，不产生新记录
func (l *Ledger) Refresh(id string, asOf time.Time) (*model.ClaimRecord, error) {
	var record model.ClaimRecord
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return claim.ErrNotFound
			}
			return err
		}
		if record.Status != model.ClaimStatusPending {
			return claim.ErrInvalidTransition
		}
		record.CreatedAt = asOf
		record.UpdatedAt = asOf
		return tx.Model(&record).
			Select("created_at", "updated_at").
			Updates(map[string]interface{}{"created_at": asOf, "updated_at": asOf}).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Advance 推进记录状态，只允许状态机的单向前进边。
// kind 对不上按不存在处理，且检查在事务内改动之前，跨类型误操作不会碰台账
func (l *Ledger) Advance(id string, kind model.ClaimKind, next model.ClaimStatus, asOf time.Time) (*model.ClaimRecord, error) {
	var record model.ClaimRecord
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return claim.ErrNotFound
			}
			return fmt.Errorf("failed to load claim record: %w", err)
		}
		if record.Kind != kind {
			return claim.ErrNotFound
		}
		if !record.Status.CanAdvanceTo(next) {
			return fmt.Errorf("%w: %s -> %s", claim.ErrInvalidTransition, record.Status, next)
		}

		updates := map[string]interface{}{"status": next, "updated_at": asOf}
		switch next {
		case model.ClaimStatusClaimed:
			updates["claimed_at"] = asOf
			record.ClaimedAt = &asOf
		case model.ClaimStatusPaid:
			updates["paid_at"] = asOf
			record.PaidAt = &asOf
		}
		record.Status = next
		record.UpdatedAt = asOf
		return tx.Model(&model.ClaimRecord{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByStatus 按状态列出某类领取记录，最新的在前，给管理端审核用
func (l *Ledger) ListByStatus(kind model.ClaimKind, status model.ClaimStatus) ([]model.ClaimRecord, error) {
	var records []model.ClaimRecord
	err := l.db.Where("kind = ? AND status = ?", kind, status).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list claim records: %w", err)
	}
	return records, nil
}

// FindLatestByWallet 查某个钱包该类最近一条记录，状态查询接口用
func (l *Ledger) FindLatestByWallet(kind model.ClaimKind, wallet string) (*model.ClaimRecord, error) {
	var record model.ClaimRecord
	err := l.db.Where("kind = ? AND wallet = ?", kind, wallet).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query claim record: %w", err)
	}
	return &record, nil
}

// FindStalePending 找出窗口已过仍停在 pending 的记录，过期清理任务用
func (l *Ledger) FindStalePending(kind model.ClaimKind, window time.Duration, asOf time.Time) ([]model.ClaimRecord, error) {
	var records []model.ClaimRecord
	err := l.db.Where("kind = ? AND status = ? AND created_at <= ?",
		kind, model.ClaimStatusPending, asOf.Add(-window)).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending claims: %w", err)
	}
	return records, nil
}
