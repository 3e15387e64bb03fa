package models

import "time"

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

type Contract struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Terms        string         `gorm:"type:text;not null" json:"terms"`
	Status       ContractStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	ClientID     uint           `gorm:"not null;index" json:"clientId"`
	ContractorID uint           `gorm:"not null;index" json:"contractorId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Client     *Profile `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Contractor *Profile `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`
	Jobs       []Job    `gorm:"foreignKey:ContractID" json:"jobs,omitempty"`
}
