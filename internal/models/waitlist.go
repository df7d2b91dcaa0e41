package models

import "gorm.io/gorm"

type WaitlistEntry struct {
	gorm.Model
	Email string `json:"email" gorm:"unique;not null"`
}
