package models

// ShipmentWithCommodities pairs a shipment with its line items for validation
// and formatting.
type ShipmentWithCommodities struct {
	Shipment    Shipment    `json:"shipment"`
	Commodities []Commodity `json:"commodities"`
}

// Bundle is the full candidate payload for one submission: exactly one driver
// and one power unit, optional trailers and insurance, and one or more
// shipments. The bundle is what the validator checks and the formatter
// consumes; it is also the workflow's in-memory draft.
type Bundle struct {
	Manifest  *Manifest                 `json:"manifest"`
	Driver    *Driver                   `json:"driver"`
	Vehicle   *Vehicle                  `json:"vehicle"`
	Trailers  []Vehicle                 `json:"trailers,omitempty"`
	Insurance *InsurancePolicy          `json:"insurance,omitempty"`
	Shipments []ShipmentWithCommodities `json:"shipments"`
}
