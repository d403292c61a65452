package core

import (
	"context"
	"fmt"
	"time"

	"fabtrack/pkg/domain"
)

// seedSnapshot builds the synthetic sample dataset. Records are created
// through regular transactions so every cascade and derivation invariant
// holds in the seeded state, and ids are fixed so reseeding is idempotent.
func seedSnapshot(vocab domain.ShipmentVocabulary, now time.Time) Snapshot {
	store := NewMemoryStore(vocab)
	store.nowFn = func() time.Time { return now }
	if len(vocab.Types) == 0 {
		vocab = domain.FreightVocabulary
	}

	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		northfield, err := tx.CreateClient(Client{
			Base:          domain.Base{ID: "seed-client-northfield"},
			Name:          "Northfield Industries",
			ContactPerson: "Elena Marsh",
			Email:         "e.marsh@northfield.example",
			Phone:         "+1 612 555 0147",
			Location:      "Minneapolis, USA",
		})
		if err != nil {
			return err
		}
		harbour, err := tx.CreateClient(Client{
			Base:          domain.Base{ID: "seed-client-harbour"},
			Name:          "Harbour Dynamics",
			ContactPerson: "Jonas Berg",
			Email:         "jonas@harbourdynamics.example",
			Phone:         "+47 22 55 01 90",
			Location:      "Oslo, Norway",
		})
		if err != nil {
			return err
		}

		factoryA, err := tx.CreateProject(Project{
			Base:           domain.Base{ID: "seed-project-factory-a"},
			Name:           "Factory A Assembly Line",
			ClientID:       &northfield.ID,
			Location:       "Minneapolis, USA",
			Status:         domain.StatusInProgress,
			StartDate:      "2025-02-03",
			EndDate:        "2025-11-28",
			ProjectManager: "Priya Nair",
			Description:    "Conveyor and robotic cell installation for plant A.",
		})
		if err != nil {
			return err
		}
		quayside, err := tx.CreateProject(Project{
			Base:           domain.Base{ID: "seed-project-quayside"},
			Name:           "Quayside Crane Refit",
			ClientID:       &harbour.ID,
			Location:       "Oslo, Norway",
			Status:         domain.StatusPending,
			StartDate:      "2025-05-12",
			EndDate:        "2026-03-20",
			ProjectManager: "Mikkel Sund",
			Description:    "Structural refit and drive replacement for two quay cranes.",
		})
		if err != nil {
			return err
		}

		shenzhenParts, err := tx.CreateSupplier(Supplier{
			Base:             domain.Base{ID: "seed-supplier-shenzhen"},
			Name:             "Shenzhen Precision Parts",
			Country:          "China",
			ContactPerson:    "Wei Lin",
			Email:            "wei.lin@szprecision.example",
			Phone:            "+86 755 5550 112",
			Rating:           4.5,
			OnTimeDelivery:   92,
			Location:         "Shenzhen",
			PositiveComments: []string{"Consistent machining quality", "Fast quoting"},
			NegativeComments: []string{"Packaging occasionally damaged"},
		})
		if err != nil {
			return err
		}
		rheinwerk, err := tx.CreateSupplier(Supplier{
			Base:             domain.Base{ID: "seed-supplier-rheinwerk"},
			Name:             "Rheinwerk Stahl GmbH",
			Country:          "Germany",
			ContactPerson:    "Anke Vogel",
			Email:            "vogel@rheinwerk-stahl.example",
			Phone:            "+49 211 555 0178",
			Rating:           4.8,
			OnTimeDelivery:   97,
			Location:         "Düsseldorf",
			PositiveComments: []string{"Certified welds, excellent documentation"},
			NegativeComments: []string{},
		})
		if err != nil {
			return err
		}

		po1, err := tx.CreatePurchaseOrder(PurchaseOrder{
			Base:       domain.Base{ID: "seed-po-1001"},
			PONumber:   "PO-1001",
			ProjectID:  factoryA.ID,
			SupplierID: shenzhenParts.ID,
			Status:     domain.POStatusActive,
			Deadline:   "2025-08-15",
			IssuedDate: "2025-03-01",
			Parts: []Part{
				{ID: "seed-part-gearbox", Name: "Gearbox housing", Quantity: 40, Status: domain.StatusCompleted, Progress: 100},
				{ID: "seed-part-rollers", Name: "Conveyor rollers", Quantity: 600, Status: domain.StatusInProgress, Progress: 40},
			},
			Amount:      182500,
			Description: "Machined components for conveyor drive units.",
		})
		if err != nil {
			return err
		}
		po2, err := tx.CreatePurchaseOrder(PurchaseOrder{
			Base:       domain.Base{ID: "seed-po-1002"},
			PONumber:   "PO-1002",
			ProjectID:  factoryA.ID,
			SupplierID: rheinwerk.ID,
			Status:     domain.POStatusActive,
			Deadline:   "2025-09-30",
			IssuedDate: "2025-04-10",
			Parts: []Part{
				{ID: "seed-part-frames", Name: "Support frames", Quantity: 24, Status: domain.StatusInProgress, Progress: 30},
			},
			Amount:      96400,
			Description: "Welded steel support structures.",
		})
		if err != nil {
			return err
		}
		if _, err := tx.CreatePurchaseOrder(PurchaseOrder{
			Base:       domain.Base{ID: "seed-po-2001"},
			PONumber:   "PO-2001",
			ProjectID:  quayside.ID,
			SupplierID: rheinwerk.ID,
			Status:     domain.POStatusDelayed,
			Deadline:   "2025-12-01",
			IssuedDate: "2025-06-02",
			Parts: []Part{
				{ID: "seed-part-boom", Name: "Boom segments", Quantity: 8, Status: domain.StatusDelayed, Progress: 10},
			},
			Amount:      410000,
			Description: "Crane boom structural steel.",
		}); err != nil {
			return err
		}

		containerType, trackedType := seedShipmentTypes(vocab)
		if _, err := tx.CreateShipment(Shipment{
			Base:            domain.Base{ID: "seed-shipment-1"},
			ProjectID:       factoryA.ID,
			SupplierID:      shenzhenParts.ID,
			POID:            po1.ID,
			PartID:          "seed-part-gearbox",
			Type:            containerType,
			ShippedDate:     "2025-07-02",
			ETDDate:         "2025-07-04",
			ETADate:         "2025-08-01",
			ContainerNumber: "MSKU7734120",
			ContainerSize:   "40ft",
			ContainerType:   "High Cube",
			LockNumber:      "SL-99812",
			Status:          "In Transit",
		}); err != nil {
			return err
		}
		if _, err := tx.CreateShipment(Shipment{
			Base:           domain.Base{ID: "seed-shipment-2"},
			ProjectID:      factoryA.ID,
			SupplierID:     rheinwerk.ID,
			POID:           po2.ID,
			PartID:         "seed-part-frames",
			Type:           trackedType,
			ShippedDate:    "2025-07-20",
			ETDDate:        "2025-07-21",
			ETADate:        "2025-07-23",
			TrackingNumber: "DHL-4481920033",
			Status:         "Delivered",
		}); err != nil {
			return err
		}

		if _, err := tx.CreateExternalLink(ExternalLink{
			Base:       domain.Base{ID: "seed-link-report"},
			Type:       domain.LinkReport,
			ProjectID:  factoryA.ID,
			SupplierID: &shenzhenParts.ID,
			POID:       &po1.ID,
			Title:      "Q2 inspection report",
			URL:        "https://files.example/reports/factory-a-q2.pdf",
			Date:       "2025-07-01",
		}); err != nil {
			return err
		}
		if _, err := tx.CreateExternalLink(ExternalLink{
			Base:      domain.Base{ID: "seed-link-photos"},
			Type:      domain.LinkPhoto,
			ProjectID: quayside.ID,
			Title:     "Crane boom casting photos",
			URL:       "https://files.example/photos/quayside-boom",
			Date:      "2025-06-20",
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		// The seed dataset is static and validated by tests; failing to build
		// it is a programming error.
		panic(fmt.Errorf("seed snapshot: %w", err))
	}
	return store.Snapshot()
}

// seedShipmentTypes picks one container-mode and one tracked-mode type from
// the active vocabulary so seeded shipments validate under either set.
func seedShipmentTypes(vocab domain.ShipmentVocabulary) (containerType, trackedType string) {
	for _, t := range vocab.Types {
		switch t.Mode {
		case domain.ModeContainer:
			if containerType == "" {
				containerType = t.Name
			}
		case domain.ModeTracked:
			if trackedType == "" {
				trackedType = t.Name
			}
		}
	}
	return containerType, trackedType
}
