// Package validate checks a candidate bundle against the manifest type policy
// before formatting. All rules are evaluated independently so the caller gets
// the complete list of violations, not just the first.
package validate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"borderlink/internal/manifest/models"
)

// Violation codes. These are stable identifiers surfaced to clients; renaming
// one is a breaking API change.
const (
	CodeMissingTripNumber      = "MISSING_TRIP_NUMBER"
	CodeMissingDriverLicense   = "MISSING_DRIVER_LICENSE"
	CodeMissingVehicleVIN      = "MISSING_VEHICLE_VIN"
	CodeMissingShipments       = "MISSING_SHIPMENTS"
	CodeMissingCommodities     = "MISSING_COMMODITIES"
	CodeMissingInsuranceForACI = "MISSING_INSURANCE_FOR_ACI"
)

// Violation names one failed rule and the entity it applies to.
type Violation struct {
	Code     string    `json:"code"`
	EntityID uuid.UUID `json:"entity_id"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s (%s)", v.Code, v.EntityID)
}

// Violations is the ordered, non-empty result of a failed validation.
type Violations []Violation

func (vs Violations) Error() string {
	codes := make([]string, len(vs))
	for i, v := range vs {
		codes[i] = v.Code
	}
	return "manifest validation failed: " + strings.Join(codes, ", ")
}

// ValidBundle wraps a bundle that passed validation. The formatter accepts
// only this type, so an unvalidated bundle cannot reach it by construction.
type ValidBundle struct {
	bundle *models.Bundle
}

// Bundle returns the underlying validated bundle.
func (v ValidBundle) Bundle() *models.Bundle {
	return v.bundle
}

// Check evaluates every rule against the bundle. On success it returns the
// approved bundle; otherwise the full ordered violation list. The input is
// never mutated.
func Check(b *models.Bundle) (*ValidBundle, Violations) {
	var violations Violations

	if strings.TrimSpace(b.Manifest.TripNumber) == "" {
		violations = append(violations, Violation{Code: CodeMissingTripNumber, EntityID: b.Manifest.ID})
	}
	if b.Driver == nil || strings.TrimSpace(b.Driver.LicenseNumber) == "" {
		violations = append(violations, Violation{Code: CodeMissingDriverLicense, EntityID: driverID(b)})
	}
	if b.Vehicle == nil || strings.TrimSpace(b.Vehicle.VINNumber) == "" {
		violations = append(violations, Violation{Code: CodeMissingVehicleVIN, EntityID: vehicleID(b)})
	}
	if len(b.Shipments) == 0 {
		violations = append(violations, Violation{Code: CodeMissingShipments, EntityID: b.Manifest.ID})
	}
	for _, s := range b.Shipments {
		if len(s.Commodities) == 0 {
			violations = append(violations, Violation{Code: CodeMissingCommodities, EntityID: s.Shipment.ID})
		}
	}
	// ACI requires a funded insurance policy. ACE never requires insurance or
	// a FAST card, so there is no ACE arm here.
	if b.Manifest.ManifestType == models.TypeACI {
		if b.Insurance == nil || b.Insurance.PolicyAmount <= 0 {
			violations = append(violations, Violation{Code: CodeMissingInsuranceForACI, EntityID: vehicleID(b)})
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return &ValidBundle{bundle: b}, nil
}

func driverID(b *models.Bundle) uuid.UUID {
	if b.Driver != nil {
		return b.Driver.ID
	}
	return b.Manifest.ID
}

func vehicleID(b *models.Bundle) uuid.UUID {
	if b.Vehicle != nil {
		return b.Vehicle.ID
	}
	return b.Manifest.ID
}
