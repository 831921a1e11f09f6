// Package policy maps a manifest type to the field requirements and wire tags
// of its regulatory dialect. Everything here is a total, pure lookup over the
// two-valued ManifestType enum: no side effects, no failure modes.
package policy

import "borderlink/internal/manifest/models"

// Wire data tags expected by the gateway for trips and shipments.
const (
	TripTagACE     = "ACE_TRIP"
	TripTagACI     = "ACI_TRIP"
	ShipmentTagACE = "ACE_SHIPMENT"
	ShipmentTagACI = "ACI_SHIPMENT"
)

// TripTag returns the top-level wire tag for the manifest type.
func TripTag(t models.ManifestType) string {
	if t == models.TypeACI {
		return TripTagACI
	}
	return TripTagACE
}

// ShipmentTag returns the per-shipment wire tag for the manifest type.
func ShipmentTag(t models.ManifestType) string {
	if t == models.TypeACI {
		return ShipmentTagACI
	}
	return ShipmentTagACE
}

// RequiredFields names the bundle fields the dialect requires at submission
// time. The validator enforces the cross-dialect subset plus the ACI insurance
// rule; the rest are enforced by the gateway.
func RequiredFields(t models.ManifestType) []string {
	base := []string{"trip_number", "license_number", "vin_number", "shipments", "commodities"}
	if t == models.TypeACI {
		return append(base, "insurance_policy", "dot_number")
	}
	return base
}

// OptionalFields names fields that may be present but are never required for
// the manifest type. A FAST card is optional under ACE and ignored under ACI.
func OptionalFields(t models.ManifestType) []string {
	if t == models.TypeACE {
		return []string{"fast_card_number"}
	}
	return []string{"travel_documents"}
}
