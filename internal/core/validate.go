package core

import "fabtrack/pkg/domain"

func validProjectStatus(s domain.ProjectStatus) bool {
	switch s {
	case domain.StatusInProgress, domain.StatusCompleted, domain.StatusPending, domain.StatusDelayed:
		return true
	}
	return false
}

func validOrderStatus(s domain.PurchaseOrderStatus) bool {
	switch s {
	case domain.POStatusActive, domain.POStatusCompleted, domain.POStatusDelayed:
		return true
	}
	return false
}

func validLinkType(t domain.LinkType) bool {
	switch t {
	case domain.LinkReport, domain.LinkPhoto, domain.LinkTracking:
		return true
	}
	return false
}

func (tx *Transaction) validateClient(c Client) error {
	if c.Name == "" {
		return domain.ValidationError{Entity: domain.EntityClient, Field: "name", Reason: "required"}
	}
	return nil
}

func (tx *Transaction) validateProject(p Project) error {
	if p.Name == "" {
		return domain.ValidationError{Entity: domain.EntityProject, Field: "name", Reason: "required"}
	}
	if p.Status != "" && !validProjectStatus(p.Status) {
		return domain.ValidationError{Entity: domain.EntityProject, Field: "status", Reason: "unknown status " + string(p.Status)}
	}
	if p.Progress < 0 || p.Progress > 100 {
		return domain.ValidationError{Entity: domain.EntityProject, Field: "progress", Reason: "must be between 0 and 100"}
	}
	if p.ClientID != nil && tx.findClient(*p.ClientID) < 0 {
		return domain.NotFoundError{Entity: domain.EntityClient, ID: *p.ClientID}
	}
	return nil
}

func (tx *Transaction) validateSupplier(s Supplier) error {
	if s.Name == "" {
		return domain.ValidationError{Entity: domain.EntitySupplier, Field: "name", Reason: "required"}
	}
	if s.Rating < 0 || s.Rating > 5 {
		return domain.ValidationError{Entity: domain.EntitySupplier, Field: "rating", Reason: "must be between 0 and 5"}
	}
	if s.OnTimeDelivery < 0 || s.OnTimeDelivery > 100 {
		return domain.ValidationError{Entity: domain.EntitySupplier, Field: "onTimeDelivery", Reason: "must be between 0 and 100"}
	}
	return nil
}

func (tx *Transaction) validatePurchaseOrder(po PurchaseOrder) error {
	if po.ProjectID == "" {
		return domain.ValidationError{Entity: domain.EntityPurchaseOrder, Field: "projectId", Reason: "required"}
	}
	if tx.findProject(po.ProjectID) < 0 {
		return domain.NotFoundError{Entity: domain.EntityProject, ID: po.ProjectID}
	}
	if po.SupplierID == "" {
		return domain.ValidationError{Entity: domain.EntityPurchaseOrder, Field: "supplierId", Reason: "required"}
	}
	if tx.findSupplier(po.SupplierID) < 0 {
		return domain.NotFoundError{Entity: domain.EntitySupplier, ID: po.SupplierID}
	}
	if po.Status != "" && !validOrderStatus(po.Status) {
		return domain.ValidationError{Entity: domain.EntityPurchaseOrder, Field: "status", Reason: "unknown status " + string(po.Status)}
	}
	if po.Progress < 0 || po.Progress > 100 {
		return domain.ValidationError{Entity: domain.EntityPurchaseOrder, Field: "progress", Reason: "must be between 0 and 100"}
	}
	for _, part := range po.Parts {
		if part.Name == "" {
			return domain.ValidationError{Entity: domain.EntityPart, Field: "name", Reason: "required"}
		}
		if part.Quantity <= 0 {
			return domain.ValidationError{Entity: domain.EntityPart, Field: "quantity", Reason: "must be positive"}
		}
		if part.Status != "" && !validProjectStatus(part.Status) {
			return domain.ValidationError{Entity: domain.EntityPart, Field: "status", Reason: "unknown status " + string(part.Status)}
		}
		if part.Progress < 0 || part.Progress > 100 {
			return domain.ValidationError{Entity: domain.EntityPart, Field: "progress", Reason: "must be between 0 and 100"}
		}
	}
	return nil
}

func (tx *Transaction) validateShipment(s Shipment) error {
	if s.ProjectID == "" {
		return domain.ValidationError{Entity: domain.EntityShipment, Field: "projectId", Reason: "required"}
	}
	if tx.findProject(s.ProjectID) < 0 {
		return domain.NotFoundError{Entity: domain.EntityProject, ID: s.ProjectID}
	}
	if s.SupplierID == "" {
		return domain.ValidationError{Entity: domain.EntityShipment, Field: "supplierId", Reason: "required"}
	}
	if tx.findSupplier(s.SupplierID) < 0 {
		return domain.NotFoundError{Entity: domain.EntitySupplier, ID: s.SupplierID}
	}
	if s.POID == "" {
		return domain.ValidationError{Entity: domain.EntityShipment, Field: "poId", Reason: "required"}
	}
	poIdx := tx.findPurchaseOrder(s.POID)
	if poIdx < 0 {
		return domain.NotFoundError{Entity: domain.EntityPurchaseOrder, ID: s.POID}
	}
	if s.PartID != "" {
		owned := false
		for _, part := range tx.state.purchaseOrders[poIdx].Parts {
			if part.ID == s.PartID {
				owned = true
				break
			}
		}
		if !owned {
			return domain.ValidationError{Entity: domain.EntityShipment, Field: "partId", Reason: "part does not belong to purchase order " + s.POID}
		}
	}
	st, ok := tx.store.vocab.Lookup(s.Type)
	if !ok {
		return domain.ValidationError{Entity: domain.EntityShipment, Field: "type", Reason: "unknown shipment type " + s.Type}
	}
	switch st.Mode {
	case domain.ModeContainer:
		if s.ContainerNumber == "" {
			return domain.ValidationError{Entity: domain.EntityShipment, Field: "containerNumber", Reason: "required for " + st.Name}
		}
		if s.ContainerSize == "" {
			return domain.ValidationError{Entity: domain.EntityShipment, Field: "containerSize", Reason: "required for " + st.Name}
		}
		if s.ContainerType == "" {
			return domain.ValidationError{Entity: domain.EntityShipment, Field: "containerType", Reason: "required for " + st.Name}
		}
	case domain.ModeTracked:
		if s.TrackingNumber == "" {
			return domain.ValidationError{Entity: domain.EntityShipment, Field: "trackingNumber", Reason: "required for " + st.Name}
		}
	}
	return nil
}

func (tx *Transaction) validateExternalLink(l ExternalLink) error {
	if !validLinkType(l.Type) {
		return domain.ValidationError{Entity: domain.EntityExternalLink, Field: "type", Reason: "unknown link type " + string(l.Type)}
	}
	if l.ProjectID == "" {
		return domain.ValidationError{Entity: domain.EntityExternalLink, Field: "projectId", Reason: "required"}
	}
	if tx.findProject(l.ProjectID) < 0 {
		return domain.NotFoundError{Entity: domain.EntityProject, ID: l.ProjectID}
	}
	if l.SupplierID != nil && tx.findSupplier(*l.SupplierID) < 0 {
		return domain.NotFoundError{Entity: domain.EntitySupplier, ID: *l.SupplierID}
	}
	if l.POID != nil && tx.findPurchaseOrder(*l.POID) < 0 {
		return domain.NotFoundError{Entity: domain.EntityPurchaseOrder, ID: *l.POID}
	}
	return nil
}
