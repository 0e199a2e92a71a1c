// Package gormdb persists store documents in Postgres: one row per document,
// payload in a JSON column, queried through the ->> operator.
package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentRow struct {
	Collection string         `gorm:"primaryKey;size:32"`
	DocumentId string         `gorm:"primaryKey;size:64"`
	Payload    datatypes.JSON `gorm:"not null"`
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

type DB struct {
	db *gorm.DB
}

func New(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Migrate creates the documents table.
func (d *DB) Migrate() error {
	return d.db.AutoMigrate(&documentRow{})
}

func (d *DB) Upsert(ctx context.Context, collection, id string, doc []byte) error {
	row := documentRow{
		Collection: collection,
		DocumentId: id,
		Payload:    datatypes.JSON(doc),
		UpdatedAt:  time.Now(),
	}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}

func (d *DB) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var row documentRow
	err := d.db.WithContext(ctx).
		Where("collection = ? AND document_id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(row.Payload), nil
}

func (d *DB) List(ctx context.Context, collection string) ([][]byte, error) {
	var rows []documentRow
	err := d.db.WithContext(ctx).
		Where("collection = ?", collection).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return payloads(rows), nil
}

func (d *DB) FindByField(ctx context.Context, collection, field, value string) ([][]byte, error) {
	var rows []documentRow
	err := d.db.WithContext(ctx).
		Where("collection = ? AND payload ->> ? = ?", collection, field, value).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return payloads(rows), nil
}

func (d *DB) Delete(ctx context.Context, collection, id string) error {
	return d.db.WithContext(ctx).
		Where("collection = ? AND document_id = ?", collection, id).
		Delete(&documentRow{}).Error
}

func payloads(rows []documentRow) [][]byte {
	docs := make([][]byte, len(rows))
	for i, row := range rows {
		docs[i] = []byte(row.Payload)
	}
	return docs
}
