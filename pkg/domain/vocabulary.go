package domain

// ShipmentMode distinguishes which conditional fields a shipment type needs.
type ShipmentMode string

// Shipment modes determine required fields at validation time.
const (
	// ModeContainer requires container number, size and type.
	ModeContainer ShipmentMode = "container"
	// ModeTracked requires a tracking number.
	ModeTracked ShipmentMode = "tracked"
)

// ShipmentType pairs a display name with its mode.
type ShipmentType struct {
	Name string
	Mode ShipmentMode
}

// ShipmentVocabulary is a closed enumeration of shipment types. Deployments
// pick exactly one vocabulary; the two predefined sets are never mixed.
type ShipmentVocabulary struct {
	Name  string
	Types []ShipmentType
}

// FreightVocabulary is the default air/ocean freight vocabulary.
var FreightVocabulary = ShipmentVocabulary{
	Name: "freight",
	Types: []ShipmentType{
		{Name: "Air Freight", Mode: ModeTracked},
		{Name: "Ocean Freight", Mode: ModeContainer},
	},
}

// TransportVocabulary is the alternate sea/air/land vocabulary.
var TransportVocabulary = ShipmentVocabulary{
	Name: "transport",
	Types: []ShipmentType{
		{Name: "Sea", Mode: ModeContainer},
		{Name: "Air", Mode: ModeTracked},
		{Name: "Land", Mode: ModeTracked},
	},
}

// Lookup returns the shipment type matching name.
func (v ShipmentVocabulary) Lookup(name string) (ShipmentType, bool) {
	for _, t := range v.Types {
		if t.Name == name {
			return t, true
		}
	}
	return ShipmentType{}, false
}
