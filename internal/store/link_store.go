package store

import (
	"context"
	"errors"
	"fmt"

	"shortly-platform/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在，或者存在但不属于请求者
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey 违反唯一约束（短码或 owner+url）
	ErrDuplicateKey = errors.New("duplicate key")
)

// LinkStore 短链接及点击记录的持久化
type LinkStore struct {
	db *gorm.DB
}

// NewLinkStore 创建 LinkStore
func NewLinkStore(db *gorm.DB) *LinkStore {
	return &LinkStore{db: db}
}

// FindByOwnerAndURL 查找某用户已为该 URL 创建的短链接
func (s *LinkStore) FindByOwnerAndURL(ctx context.Context, ownerID uint, originalURL string) (*model.Link, error) {
	var link model.Link
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND url_hash = ?", ownerID, model.HashURL(originalURL)).
		First(&link).Error
	if err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// FindByShortID 按短码查找，不加载点击记录
func (s *LinkStore) FindByShortID(ctx context.Context, shortID string) (*model.Link, error) {
	var link model.Link
	if err := s.db.WithContext(ctx).Where("short_id = ?", shortID).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// Create 插入新短链接，短码或 (owner, url) 冲突时返回 ErrDuplicateKey
func (s *LinkStore) Create(ctx context.Context, originalURL, shortID string, ownerID uint) (*model.Link, error) {
	link := &model.Link{
		ShortID:     shortID,
		OriginalURL: originalURL,
		URLHash:     model.HashURL(originalURL),
		OwnerID:     ownerID,
	}
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, translate(err)
	}
	return link, nil
}

// AppendClick 追加一条点击记录。每次追加是独立的一行插入，并发追加互不覆盖。
func (s *LinkStore) AppendClick(ctx context.Context, linkID uint, click *model.Click) error {
	click.ID = 0
	click.LinkID = linkID
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		return fmt.Errorf("追加点击记录失败: %w", err)
	}
	return nil
}

// ListByOwner 返回用户的全部短链接及其点击记录，按创建时间倒序
func (s *LinkStore) ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error) {
	var links []model.Link
	err := s.db.WithContext(ctx).
		Preload("Clicks", func(db *gorm.DB) *gorm.DB { return db.Order("clicks.id ASC") }).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户短链接失败: %w", err)
	}
	return links, nil
}

// DeleteByShortIDAndOwner 删除属于 owner 的短链接及其点击记录。
// 短码存在但属于其他用户时同样返回 ErrNotFound，避免泄露存在性。
func (s *LinkStore) DeleteByShortIDAndOwner(ctx context.Context, shortID string, ownerID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link model.Link
		if err := tx.Where("short_id = ? AND owner_id = ?", shortID, ownerID).First(&link).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("link_id = ?", link.ID).Delete(&model.Click{}).Error; err != nil {
			return fmt.Errorf("删除点击记录失败: %w", err)
		}
		result := tx.Delete(&link)
		if result.Error != nil {
			return fmt.Errorf("删除短链接失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}
