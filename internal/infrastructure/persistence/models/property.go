package models

import (
	"time"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildingModel is the persistence model for buildings
type BuildingModel struct {
	AggregateModel
	Name        string                  `gorm:"type:varchar(200);not null"`
	Address     string                  `gorm:"type:text"`
	TotalFloors int                     `gorm:"not null;default:1"`
	Status      property.BuildingStatus `gorm:"type:varchar(20);not null;default:'active'"`
	AdminUID    string                  `gorm:"type:varchar(128);index"`
}

// TableName returns the table name for GORM
func (BuildingModel) TableName() string {
	return "buildings"
}

// ToDomain converts the model to a domain Building
func (m *BuildingModel) ToDomain() *property.Building {
	return &property.Building{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Address:           m.Address,
		TotalFloors:       m.TotalFloors,
		Status:            m.Status,
		AdminUID:          m.AdminUID,
	}
}

// FromDomain populates the model from a domain Building
func (m *BuildingModel) FromDomain(b *property.Building) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.Address = b.Address
	m.TotalFloors = b.TotalFloors
	m.Status = b.Status
	m.AdminUID = b.AdminUID
}

// BuildingModelFromDomain creates a model from a domain Building
func BuildingModelFromDomain(b *property.Building) *BuildingModel {
	m := &BuildingModel{}
	m.FromDomain(b)
	return m
}

// RoomModel is the persistence model for rooms
type RoomModel struct {
	AggregateModel
	BuildingID  uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_rooms_building_number,priority:1"`
	Number      string              `gorm:"type:varchar(20);not null;uniqueIndex:idx_rooms_building_number,priority:2"`
	Floor       int                 `gorm:"not null;default:1"`
	Status      property.RoomStatus `gorm:"type:varchar(20);not null;default:'vacant';index"`
	MonthlyRent decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TenantID    *uuid.UUID          `gorm:"type:uuid"`
	Description string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts the model to a domain Room
func (m *RoomModel) ToDomain() *property.Room {
	return &property.Room{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BuildingID:        m.BuildingID,
		Number:            m.Number,
		Floor:             m.Floor,
		Status:            m.Status,
		MonthlyRent:       m.MonthlyRent,
		TenantID:          m.TenantID,
		Description:       m.Description,
	}
}

// FromDomain populates the model from a domain Room
func (m *RoomModel) FromDomain(r *property.Room) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.BuildingID = r.BuildingID
	m.Number = r.Number
	m.Floor = r.Floor
	m.Status = r.Status
	m.MonthlyRent = r.MonthlyRent
	m.TenantID = r.TenantID
	m.Description = r.Description
}

// RoomModelFromDomain creates a model from a domain Room
func RoomModelFromDomain(r *property.Room) *RoomModel {
	m := &RoomModel{}
	m.FromDomain(r)
	return m
}

// TenantModel is the persistence model for tenants.
// At most one active tenant may occupy a room.
type TenantModel struct {
	AggregateModel
	BuildingID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	RoomID           uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_tenants_active_room,where:status = 'active'"`
	Name             string                `gorm:"type:varchar(200);not null"`
	Phone            string                `gorm:"type:varchar(50)"`
	Email            string                `gorm:"type:varchar(200)"`
	IDCard           string                `gorm:"column:id_card;type:varchar(50)"`
	EmergencyContact string                `gorm:"type:varchar(200)"`
	Notes            string                `gorm:"type:text"`
	UserID           string                `gorm:"type:varchar(128);index"`
	MoveInDate       time.Time             `gorm:"not null"`
	MoveOutDate      *time.Time
	Status           property.TenantStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the model to a domain Tenant
func (m *TenantModel) ToDomain() *property.Tenant {
	return &property.Tenant{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BuildingID:        m.BuildingID,
		RoomID:            m.RoomID,
		TenantProfile: property.TenantProfile{
			Name:             m.Name,
			Phone:            m.Phone,
			Email:            m.Email,
			IDCard:           m.IDCard,
			EmergencyContact: m.EmergencyContact,
			Notes:            m.Notes,
			UserID:           m.UserID,
		},
		MoveInDate:  m.MoveInDate,
		MoveOutDate: m.MoveOutDate,
		Status:      m.Status,
	}
}

// FromDomain populates the model from a domain Tenant
func (m *TenantModel) FromDomain(t *property.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.BuildingID = t.BuildingID
	m.RoomID = t.RoomID
	m.Name = t.Name
	m.Phone = t.Phone
	m.Email = t.Email
	m.IDCard = t.IDCard
	m.EmergencyContact = t.EmergencyContact
	m.Notes = t.Notes
	m.UserID = t.UserID
	m.MoveInDate = t.MoveInDate
	m.MoveOutDate = t.MoveOutDate
	m.Status = t.Status
}

// TenantModelFromDomain creates a model from a domain Tenant
func TenantModelFromDomain(t *property.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// ContractModel is the persistence model for rental contracts
type ContractModel struct {
	AggregateModel
	RoomID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	TenantID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	StartDate    time.Time               `gorm:"not null"`
	EndDate      time.Time               `gorm:"not null;index"`
	MonthlyRent  decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Deposit      decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	Terms        string                  `gorm:"type:text"`
	Status       property.ContractStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	TerminatedAt *time.Time
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the model to a domain Contract
func (m *ContractModel) ToDomain() *property.Contract {
	return &property.Contract{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		RoomID:            m.RoomID,
		TenantID:          m.TenantID,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		MonthlyRent:       m.MonthlyRent,
		Deposit:           m.Deposit,
		Terms:             m.Terms,
		Status:            m.Status,
		TerminatedAt:      m.TerminatedAt,
	}
}

// FromDomain populates the model from a domain Contract
func (m *ContractModel) FromDomain(c *property.Contract) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.RoomID = c.RoomID
	m.TenantID = c.TenantID
	m.StartDate = c.StartDate.UTC()
	m.EndDate = c.EndDate.UTC()
	m.MonthlyRent = c.MonthlyRent
	m.Deposit = c.Deposit
	m.Terms = c.Terms
	m.Status = c.Status
	m.TerminatedAt = c.TerminatedAt
}

// ContractModelFromDomain creates a model from a domain Contract
func ContractModelFromDomain(c *property.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}
