package transfer

import (
	"context"
	"errors"

	"creditpool/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type transferStore struct {
	db *db.DB
}

// New new transfer store
func New(db *db.DB) core.TransferStore {
	return &transferStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Transfer{})
		if err := tx.AutoMigrate(core.Transfer{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *transferStore) ListPending(ctx context.Context, limit int) ([]*core.Transfer, error) {
	if limit <= 0 {
		return nil, errors.New("invalid limit")
	}

	var transfers []*core.Transfer
	if e := s.db.View().Where("status = ?", core.TransferStatusPending).Limit(limit).Order("id ASC").Find(&transfers).Error; e != nil {
		return nil, e
	}

	return transfers, nil
}

func (s *transferStore) MarkSent(ctx context.Context, transfer *core.Transfer) error {
	return s.db.Update().Model(core.Transfer{}).Where("id = ?", transfer.ID).Updates(map[string]interface{}{
		"status":   core.TransferStatusSent,
		"attempts": gorm.Expr("attempts + 1"),
	}).Error
}

func (s *transferStore) MarkFailed(ctx context.Context, transfer *core.Transfer) error {
	return s.db.Update().Model(core.Transfer{}).Where("id = ?", transfer.ID).Updates(map[string]interface{}{
		"status":   core.TransferStatusFailed,
		"attempts": gorm.Expr("attempts + 1"),
	}).Error
}

func (s *transferStore) MarkAttempt(ctx context.Context, transfer *core.Transfer) error {
	return s.db.Update().Model(core.Transfer{}).Where("id = ?", transfer.ID).Update("attempts", gorm.Expr("attempts + 1")).Error
}
