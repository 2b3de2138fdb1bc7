package storage

import (
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotRow is the single relational table backing Snapshots when
// Postgres is configured: one opaque blob per key.
type snapshotRow struct {
	Key   string `gorm:"primaryKey"`
	Value []byte `gorm:"type:bytea"`
}

func (snapshotRow) TableName() string { return "snapshots" }

// PostgresSnapshots persists snapshot blobs in Postgres through GORM.
type PostgresSnapshots struct {
	DB *gorm.DB
}

// NewPostgresSnapshots migrates the snapshots table and returns the
// store.
func NewPostgresSnapshots(db *gorm.DB) (*PostgresSnapshots, error) {
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, err
	}
	return &PostgresSnapshots{DB: db}, nil
}

func (s *PostgresSnapshots) Load(key string) ([]byte, bool, error) {
	var row snapshotRow
	err := s.DB.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to load snapshot %s: %v", key, err)
		return nil, false, err
	}
	return row.Value, true, nil
}

func (s *PostgresSnapshots) Save(key string, value []byte) error {
	row := snapshotRow{Key: key, Value: value}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		log.Printf("ERROR: Failed to save snapshot %s: %v", key, err)
	}
	return err
}

func (s *PostgresSnapshots) Delete(key string) error {
	return s.DB.Delete(&snapshotRow{}, "key = ?", key).Error
}
