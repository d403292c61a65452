// Package domain defines the manufacturing-tracking entities, value types,
// and adapter contracts shared by the fabtrack core and its persistence
// backends.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and error values.
const (
	// EntityClient identifies a client (customer) record.
	EntityClient EntityType = "client"
	// EntityProject identifies a manufacturing project record.
	EntityProject EntityType = "project"
	// EntitySupplier identifies a supplier record.
	EntitySupplier EntityType = "supplier"
	// EntityPurchaseOrder identifies a purchase order record.
	EntityPurchaseOrder EntityType = "purchase_order"
	// EntityPart identifies a part owned by a purchase order.
	EntityPart EntityType = "part"
	// EntityShipment identifies a shipment record.
	EntityShipment EntityType = "shipment"
	// EntityExternalLink identifies an external link record.
	EntityExternalLink EntityType = "external_link"
)

// ProjectStatus enumerates canonical project and part workflow states.
type ProjectStatus string

// Canonical project statuses shown on the dashboard.
const (
	StatusInProgress ProjectStatus = "In Progress"
	StatusCompleted  ProjectStatus = "Completed"
	StatusPending    ProjectStatus = "Pending"
	StatusDelayed    ProjectStatus = "Delayed"
)

// PurchaseOrderStatus enumerates purchase order workflow states.
type PurchaseOrderStatus string

// Canonical purchase order statuses.
const (
	POStatusActive    PurchaseOrderStatus = "Active"
	POStatusCompleted PurchaseOrderStatus = "Completed"
	POStatusDelayed   PurchaseOrderStatus = "Delayed"
)

// LinkType enumerates external link categories.
type LinkType string

// Canonical external link types.
const (
	LinkReport   LinkType = "Report"
	LinkPhoto    LinkType = "Photo"
	LinkTracking LinkType = "Tracking"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Client represents a customer commissioning projects.
type Client struct {
	Base
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Location      string `json:"location"`
}

// Project represents a tracked manufacturing project.
type Project struct {
	Base
	Name           string        `json:"name"`
	ClientID       *string       `json:"clientId"`
	Location       string        `json:"location"`
	Status         ProjectStatus `json:"status"`
	Progress       int           `json:"progress"`
	StartDate      string        `json:"startDate"`
	EndDate        string        `json:"endDate"`
	ProjectManager string        `json:"projectManager"`
	Description    string        `json:"description"`
}

// Supplier represents a vendor fulfilling purchase orders.
type Supplier struct {
	Base
	Name             string   `json:"name"`
	Country          string   `json:"country"`
	ContactPerson    string   `json:"contactPerson"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Rating           float64  `json:"rating"`
	OnTimeDelivery   float64  `json:"onTimeDelivery"`
	Location         string   `json:"location"`
	PositiveComments []string `json:"positiveComments"`
	NegativeComments []string `json:"negativeComments"`
}

// Part is a line item owned by exactly one purchase order. Parts never exist
// independently; their lifecycle is bound to the owning order.
type Part struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Quantity int           `json:"quantity"`
	Status   ProjectStatus `json:"status"`
	Progress int           `json:"progress"`
}

// PurchaseOrder represents an order placed with a supplier for a project.
type PurchaseOrder struct {
	Base
	PONumber    string              `json:"poNumber"`
	ProjectID   string              `json:"projectId"`
	SupplierID  string              `json:"supplierId"`
	Status      PurchaseOrderStatus `json:"status"`
	Deadline    string              `json:"deadline"`
	IssuedDate  string              `json:"issuedDate"`
	Parts       []Part              `json:"parts"`
	Progress    int                 `json:"progress"`
	Amount      float64             `json:"amount"`
	Description string              `json:"description"`
}

// Shipment tracks movement of a purchase order part.
type Shipment struct {
	Base
	ProjectID   string `json:"projectId"`
	SupplierID  string `json:"supplierId"`
	POID        string `json:"poId"`
	PartID      string `json:"partId"`
	Type        string `json:"type"`
	ShippedDate string `json:"shippedDate"`
	ETDDate     string `json:"etdDate"`
	ETADate     string `json:"etaDate"`
	// Container fields are required for container-mode shipment types.
	ContainerNumber string `json:"containerNumber,omitempty"`
	ContainerSize   string `json:"containerSize,omitempty"`
	ContainerType   string `json:"containerType,omitempty"`
	LockNumber      string `json:"lockNumber,omitempty"`
	// TrackingNumber is required for tracked (non-container) shipment types.
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Status         string `json:"status,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// ExternalLink references an external artifact attached to a project.
type ExternalLink struct {
	Base
	Type       LinkType `json:"type"`
	ProjectID  string   `json:"projectId"`
	SupplierID *string  `json:"supplierId"`
	POID       *string  `json:"poId"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Date       string   `json:"date"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured per transaction.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
