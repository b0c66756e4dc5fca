package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// ContactMessage is a message left through the contact form.
// There is no uniqueness on any column, submitting the same form twice stores two rows.
type ContactMessage struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Email       string `gorm:"size:100;not null"`
	Subject     string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}

// TableName keeps the table name used by earlier deployments.
func (ContactMessage) TableName() string {
	return "ContactedPeople"
}

// CreateContactMessage stores msg inside a transaction and fills in its ID.
func (c *Client) CreateContactMessage(ctx context.Context, msg *ContactMessage) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(msg).Error
	})
	if err != nil {
		log.Error("failed to create contact message", "error", err)
		return err
	}
	return nil
}

func (c *Client) CountContactMessages(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&ContactMessage{}).Count(&count).Error; err != nil {
		log.Error("failed to count contact messages", "error", err)
		return 0, err
	}
	return count, nil
}
