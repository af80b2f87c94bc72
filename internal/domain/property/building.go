package property

import (
	"fmt"
	"strings"

	"github.com/dormdesk/backend/internal/domain/shared"
)

// BuildingStatus represents whether a building is in service
type BuildingStatus string

const (
	BuildingStatusActive   BuildingStatus = "active"
	BuildingStatusInactive BuildingStatus = "inactive"
)

// IsValid checks if the status is a valid BuildingStatus
func (s BuildingStatus) IsValid() bool {
	return s == BuildingStatusActive || s == BuildingStatusInactive
}

// String returns the string representation of BuildingStatus
func (s BuildingStatus) String() string {
	return string(s)
}

// Building is a managed property containing rooms
type Building struct {
	shared.BaseAggregateRoot
	Name        string
	Address     string
	TotalFloors int
	Status      BuildingStatus
	AdminUID    string
}

// NewBuilding creates a new active building
func NewBuilding(name, address string, totalFloors int, adminUID string) (*Building, error) {
	b := &Building{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            BuildingStatusActive,
		AdminUID:          adminUID,
	}
	if err := b.Update(name, address, totalFloors); err != nil {
		return nil, err
	}
	return b, nil
}

// Update replaces the descriptive fields
func (b *Building) Update(name, address string, totalFloors int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Building name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Building name cannot exceed 200 characters")
	}
	if totalFloors < 0 {
		return shared.NewValidationError("Total floors cannot be negative")
	}
	b.Name = name
	b.Address = strings.TrimSpace(address)
	b.TotalFloors = totalFloors
	b.Touch()
	return nil
}

// SetStatus activates or deactivates the building
func (b *Building) SetStatus(status BuildingStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid building status: %s", status))
	}
	b.Status = status
	b.Touch()
	return nil
}
