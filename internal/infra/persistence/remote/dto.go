package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"fabtrack/pkg/domain"
)

// Row types mirror the remote snake_case schema. Translation between the
// local camelCase entities and these rows happens only in this package, one
// direction per operation.

type clientRow struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Location      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func clientToRow(c domain.Client) clientRow {
	return clientRow{
		ID:            c.ID,
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Location:      c.Location,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func rowToClient(r clientRow) domain.Client {
	c := domain.Client{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		Location:      r.Location,
	}
	c.ID = r.ID
	c.CreatedAt = r.CreatedAt
	c.UpdatedAt = r.UpdatedAt
	return c
}

type projectRow struct {
	ID             string
	Name           string
	ClientID       *string
	Location       string
	Status         string
	Progress       int
	StartDate      string
	EndDate        string
	ProjectManager string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func projectToRow(p domain.Project) projectRow {
	return projectRow{
		ID:             p.ID,
		Name:           p.Name,
		ClientID:       p.ClientID,
		Location:       p.Location,
		Status:         string(p.Status),
		Progress:       p.Progress,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		ProjectManager: p.ProjectManager,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func rowToProject(r projectRow) domain.Project {
	p := domain.Project{
		Name:           r.Name,
		ClientID:       r.ClientID,
		Location:       r.Location,
		Status:         domain.ProjectStatus(r.Status),
		Progress:       r.Progress,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		ProjectManager: r.ProjectManager,
		Description:    r.Description,
	}
	p.ID = r.ID
	p.CreatedAt = r.CreatedAt
	p.UpdatedAt = r.UpdatedAt
	return p
}

type supplierRow struct {
	ID               string
	Name             string
	Country          string
	ContactPerson    string
	Email            string
	Phone            string
	Rating           float64
	OnTimeDelivery   float64
	Location         string
	PositiveComments []byte
	NegativeComments []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func supplierToRow(s domain.Supplier) (supplierRow, error) {
	pos, err := encodeComments(s.PositiveComments)
	if err != nil {
		return supplierRow{}, fmt.Errorf("positive_comments: %w", err)
	}
	neg, err := encodeComments(s.NegativeComments)
	if err != nil {
		return supplierRow{}, fmt.Errorf("negative_comments: %w", err)
	}
	return supplierRow{
		ID:               s.ID,
		Name:             s.Name,
		Country:          s.Country,
		ContactPerson:    s.ContactPerson,
		Email:            s.Email,
		Phone:            s.Phone,
		Rating:           s.Rating,
		OnTimeDelivery:   s.OnTimeDelivery,
		Location:         s.Location,
		PositiveComments: pos,
		NegativeComments: neg,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}, nil
}

func rowToSupplier(r supplierRow) (domain.Supplier, error) {
	pos, err := decodeComments(r.PositiveComments)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("positive_comments: %w", err)
	}
	neg, err := decodeComments(r.NegativeComments)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("negative_comments: %w", err)
	}
	s := domain.Supplier{
		Name:             r.Name,
		Country:          r.Country,
		ContactPerson:    r.ContactPerson,
		Email:            r.Email,
		Phone:            r.Phone,
		Rating:           r.Rating,
		OnTimeDelivery:   r.OnTimeDelivery,
		Location:         r.Location,
		PositiveComments: pos,
		NegativeComments: neg,
	}
	s.ID = r.ID
	s.CreatedAt = r.CreatedAt
	s.UpdatedAt = r.UpdatedAt
	return s, nil
}

// encodeComments stores comment lists as JSONB; nil encodes as an empty list
// so readers on any stack see the same shape.
func encodeComments(comments []string) ([]byte, error) {
	if comments == nil {
		comments = []string{}
	}
	return json.Marshal(comments)
}

// decodeComments tolerates NULL columns from rows written before the comment
// fields existed, defaulting to an empty list.
func decodeComments(payload []byte) ([]string, error) {
	if len(payload) == 0 {
		return []string{}, nil
	}
	var comments []string
	if err := json.Unmarshal(payload, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []string{}
	}
	return comments, nil
}

type purchaseOrderRow struct {
	ID          string
	PONumber    string
	ProjectID   string
	SupplierID  string
	Status      string
	Deadline    string
	IssuedDate  string
	Progress    int
	Amount      float64
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// purchaseOrderToRow drops the embedded parts; they travel through the parts
// table keyed by po_id.
func purchaseOrderToRow(po domain.PurchaseOrder) purchaseOrderRow {
	return purchaseOrderRow{
		ID:          po.ID,
		PONumber:    po.PONumber,
		ProjectID:   po.ProjectID,
		SupplierID:  po.SupplierID,
		Status:      string(po.Status),
		Deadline:    po.Deadline,
		IssuedDate:  po.IssuedDate,
		Progress:    po.Progress,
		Amount:      po.Amount,
		Description: po.Description,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}

func rowToPurchaseOrder(r purchaseOrderRow) domain.PurchaseOrder {
	po := domain.PurchaseOrder{
		PONumber:    r.PONumber,
		ProjectID:   r.ProjectID,
		SupplierID:  r.SupplierID,
		Status:      domain.PurchaseOrderStatus(r.Status),
		Deadline:    r.Deadline,
		IssuedDate:  r.IssuedDate,
		Parts:       []domain.Part{},
		Progress:    r.Progress,
		Amount:      r.Amount,
		Description: r.Description,
	}
	po.ID = r.ID
	po.CreatedAt = r.CreatedAt
	po.UpdatedAt = r.UpdatedAt
	return po
}

type partRow struct {
	ID       string
	POID     string
	Name     string
	Quantity int
	Status   string
	Progress int
}

func partToRow(poID string, p domain.Part) partRow {
	return partRow{
		ID:       p.ID,
		POID:     poID,
		Name:     p.Name,
		Quantity: p.Quantity,
		Status:   string(p.Status),
		Progress: p.Progress,
	}
}

func rowToPart(r partRow) domain.Part {
	return domain.Part{
		ID:       r.ID,
		Name:     r.Name,
		Quantity: r.Quantity,
		Status:   domain.ProjectStatus(r.Status),
		Progress: r.Progress,
	}
}

type externalLinkRow struct {
	ID         string
	Type       string
	ProjectID  string
	SupplierID *string
	POID       *string
	Title      string
	URL        string
	Date       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func externalLinkToRow(l domain.ExternalLink) externalLinkRow {
	return externalLinkRow{
		ID:         l.ID,
		Type:       string(l.Type),
		ProjectID:  l.ProjectID,
		SupplierID: l.SupplierID,
		POID:       l.POID,
		Title:      l.Title,
		URL:        l.URL,
		Date:       l.Date,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func rowToExternalLink(r externalLinkRow) domain.ExternalLink {
	l := domain.ExternalLink{
		Type:       domain.LinkType(r.Type),
		ProjectID:  r.ProjectID,
		SupplierID: r.SupplierID,
		POID:       r.POID,
		Title:      r.Title,
		URL:        r.URL,
		Date:       r.Date,
	}
	l.ID = r.ID
	l.CreatedAt = r.CreatedAt
	l.UpdatedAt = r.UpdatedAt
	return l
}

type shipmentRow struct {
	ID              string
	ProjectID       string
	SupplierID      string
	POID            string
	PartID          string
	Type            string
	ShippedDate     string
	ETDDate         string
	ETADate         string
	ContainerNumber string
	ContainerSize   string
	ContainerType   string
	LockNumber      string
	TrackingNumber  string
	Status          string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func shipmentToRow(s domain.Shipment) shipmentRow {
	return shipmentRow{
		ID:              s.ID,
		ProjectID:       s.ProjectID,
		SupplierID:      s.SupplierID,
		POID:            s.POID,
		PartID:          s.PartID,
		Type:            s.Type,
		ShippedDate:     s.ShippedDate,
		ETDDate:         s.ETDDate,
		ETADate:         s.ETADate,
		ContainerNumber: s.ContainerNumber,
		ContainerSize:   s.ContainerSize,
		ContainerType:   s.ContainerType,
		LockNumber:      s.LockNumber,
		TrackingNumber:  s.TrackingNumber,
		Status:          s.Status,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func rowToShipment(r shipmentRow) domain.Shipment {
	s := domain.Shipment{
		ProjectID:       r.ProjectID,
		SupplierID:      r.SupplierID,
		POID:            r.POID,
		PartID:          r.PartID,
		Type:            r.Type,
		ShippedDate:     r.ShippedDate,
		ETDDate:         r.ETDDate,
		ETADate:         r.ETADate,
		ContainerNumber: r.ContainerNumber,
		ContainerSize:   r.ContainerSize,
		ContainerType:   r.ContainerType,
		LockNumber:      r.LockNumber,
		TrackingNumber:  r.TrackingNumber,
		Status:          r.Status,
		Notes:           r.Notes,
	}
	s.ID = r.ID
	s.CreatedAt = r.CreatedAt
	s.UpdatedAt = r.UpdatedAt
	return s
}
