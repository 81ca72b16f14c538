package models

import "time"

// Message is a direct message exchanged between a student and a teacher.
type Message struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SenderID      uint      `gorm:"not null;index:idx_message_sender" json:"sender_id"`
	SenderType    UserType  `gorm:"size:16;not null;index:idx_message_sender" json:"sender_type"`
	RecipientID   uint      `gorm:"not null;index:idx_message_recipient" json:"recipient_id"`
	RecipientType UserType  `gorm:"size:16;not null;index:idx_message_recipient" json:"recipient_type"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	Read          bool      `gorm:"not null;default:false" json:"read"`
}

// IsAddressedTo reports whether the participant is the message recipient.
func (m Message) IsAddressedTo(id uint, userType UserType) bool {
	return m.RecipientID == id && m.RecipientType == userType
}
