package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userId" gorm:"not null;index"`
	Message string `json:"message" gorm:"not null"`
	IsRead  bool   `json:"isRead" gorm:"not null;default:false"`
}
