package property

import (
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBuildingRequest represents a request to register a building
type CreateBuildingRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Address     string `json:"address" binding:"max=500"`
	TotalFloors int    `json:"total_floors" binding:"min=0,max=200"`
	AdminUID    string `json:"-"`
}

// UpdateBuildingRequest represents a request to update a building
type UpdateBuildingRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	TotalFloors *int    `json:"total_floors" binding:"omitempty,min=0,max=200"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// BuildingListFilter represents query parameters for listing buildings
type BuildingListFilter struct {
	appshared.ListQuery
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// BuildingResponse represents a building in API responses
type BuildingResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	TotalFloors int       `json:"total_floors"`
	Status      string    `json:"status"`
	AdminUID    string    `json:"admin_uid,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ToBuildingResponse converts a domain Building to a response
func ToBuildingResponse(b *property.Building) BuildingResponse {
	return BuildingResponse{
		ID:          b.ID,
		Name:        b.Name,
		Address:     b.Address,
		TotalFloors: b.TotalFloors,
		Status:      string(b.Status),
		AdminUID:    b.AdminUID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// CreateRoomRequest represents a request to add a room to a building
type CreateRoomRequest struct {
	BuildingID  uuid.UUID       `json:"building_id" binding:"required"`
	Number      string          `json:"number" binding:"required,min=1,max=20"`
	Floor       int             `json:"floor" binding:"min=0,max=200"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	Description string          `json:"description" binding:"max=1000"`
}

// UpdateRoomRequest represents a request to update room details
type UpdateRoomRequest struct {
	Number      *string          `json:"number" binding:"omitempty,min=1,max=20"`
	Floor       *int             `json:"floor" binding:"omitempty,min=0,max=200"`
	MonthlyRent *decimal.Decimal `json:"monthly_rent"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
}

// SetRoomStatusRequest represents a manual room status change
type SetRoomStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=vacant maintenance reserved"`
}

// RoomListFilter represents query parameters for listing rooms
type RoomListFilter struct {
	appshared.ListQuery
	BuildingID *uuid.UUID `form:"-"`
	Status     string     `form:"status" binding:"omitempty,oneof=vacant occupied maintenance reserved"`
	Floor      *int       `form:"floor" binding:"omitempty,min=0"`
}

// RoomResponse represents a room in API responses
type RoomResponse struct {
	ID          uuid.UUID       `json:"id"`
	BuildingID  uuid.UUID       `json:"building_id"`
	Number      string          `json:"number"`
	Floor       int             `json:"floor"`
	Status      string          `json:"status"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	TenantID    *uuid.UUID      `json:"tenant_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToRoomResponse converts a domain Room to a response
func ToRoomResponse(r *property.Room) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		BuildingID:  r.BuildingID,
		Number:      r.Number,
		Floor:       r.Floor,
		Status:      string(r.Status),
		MonthlyRent: r.MonthlyRent,
		TenantID:    r.TenantID,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
}

// TenantProfileRequest holds the personal fields of a tenant
type TenantProfileRequest struct {
	Name             string `json:"name" binding:"required,min=1,max=200"`
	Phone            string `json:"phone" binding:"max=30"`
	Email            string `json:"email" binding:"omitempty,email,max=200"`
	IDCard           string `json:"id_card" binding:"max=30"`
	EmergencyContact string `json:"emergency_contact" binding:"max=200"`
	Notes            string `json:"notes" binding:"max=2000"`
	UserID           string `json:"user_id" binding:"max=128"`
}

func (p TenantProfileRequest) toDomain() property.TenantProfile {
	return property.TenantProfile{
		Name:             p.Name,
		Phone:            p.Phone,
		Email:            p.Email,
		IDCard:           p.IDCard,
		EmergencyContact: p.EmergencyContact,
		Notes:            p.Notes,
		UserID:           p.UserID,
	}
}

// MoveInRequest represents a request to register a tenant into a room
type MoveInRequest struct {
	RoomID uuid.UUID `json:"room_id" binding:"required"`
	TenantProfileRequest
	MoveInDate time.Time `json:"move_in_date" binding:"required"`
}

// ReassignRequest moves a tenant to another room
type ReassignRequest struct {
	RoomID uuid.UUID `json:"room_id" binding:"required"`
}

// MoveOutRequest ends a tenancy
type MoveOutRequest struct {
	MoveOutDate *time.Time `json:"move_out_date"`
}

// TenantListFilter represents query parameters for listing tenants
type TenantListFilter struct {
	appshared.ListQuery
	BuildingID *uuid.UUID `form:"-"`
	RoomID     *uuid.UUID `form:"-"`
	Status     string     `form:"status" binding:"omitempty,oneof=active left"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID               uuid.UUID  `json:"id"`
	BuildingID       uuid.UUID  `json:"building_id"`
	RoomID           uuid.UUID  `json:"room_id"`
	UserID           string     `json:"user_id,omitempty"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone,omitempty"`
	Email            string     `json:"email,omitempty"`
	IDCard           string     `json:"id_card,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	MoveInDate       time.Time  `json:"move_in_date"`
	MoveOutDate      *time.Time `json:"move_out_date,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Version          int        `json:"version"`
}

// ToTenantResponse converts a domain Tenant to a response
func ToTenantResponse(t *property.Tenant) TenantResponse {
	return TenantResponse{
		ID:               t.ID,
		BuildingID:       t.BuildingID,
		RoomID:           t.RoomID,
		UserID:           t.UserID,
		Name:             t.Name,
		Phone:            t.Phone,
		Email:            t.Email,
		IDCard:           t.IDCard,
		EmergencyContact: t.EmergencyContact,
		Notes:            t.Notes,
		MoveInDate:       t.MoveInDate,
		MoveOutDate:      t.MoveOutDate,
		Status:           string(t.Status),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Version:          t.Version,
	}
}

// CreateContractRequest represents a request to sign a lease.
// MonthlyRent defaults to the room's rent when omitted.
type CreateContractRequest struct {
	RoomID      uuid.UUID        `json:"room_id" binding:"required"`
	TenantID    uuid.UUID        `json:"tenant_id" binding:"required"`
	StartDate   time.Time        `json:"start_date" binding:"required"`
	EndDate     time.Time        `json:"end_date" binding:"required"`
	MonthlyRent *decimal.Decimal `json:"monthly_rent"`
	Deposit     decimal.Decimal  `json:"deposit"`
	Terms       string           `json:"terms" binding:"max=5000"`
}

// ContractListFilter represents query parameters for listing contracts
type ContractListFilter struct {
	appshared.ListQuery
	RoomID   *uuid.UUID `form:"-"`
	TenantID *uuid.UUID `form:"-"`
	Status   string     `form:"status" binding:"omitempty,oneof=active expired terminated"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID           uuid.UUID       `json:"id"`
	RoomID       uuid.UUID       `json:"room_id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	MonthlyRent  decimal.Decimal `json:"monthly_rent"`
	Deposit      decimal.Decimal `json:"deposit"`
	Terms        string          `json:"terms,omitempty"`
	Status       string          `json:"status"`
	DaysLeft     int             `json:"days_left"`
	TerminatedAt *time.Time      `json:"terminated_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Version      int             `json:"version"`
}

// ToContractResponse converts a domain Contract to a response at instant now
func ToContractResponse(c *property.Contract, now time.Time) ContractResponse {
	return ContractResponse{
		ID:           c.ID,
		RoomID:       c.RoomID,
		TenantID:     c.TenantID,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		MonthlyRent:  c.MonthlyRent,
		Deposit:      c.Deposit,
		Terms:        c.Terms,
		Status:       string(c.Status),
		DaysLeft:     c.DaysLeft(now),
		TerminatedAt: c.TerminatedAt,
		CreatedAt:    c.CreatedAt,
		Version:      c.Version,
	}
}

// ExpireResult reports a contract expiry sweep
type ExpireResult struct {
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}
