package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender as BorderConnect expects it on driver records.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// VehicleType distinguishes power units from trailers.
type VehicleType string

const (
	VehicleTruck   VehicleType = "TR"
	VehicleTrailer VehicleType = "TL"
)

// Packaging and weight unit tokens are shared verbatim between storage and the
// gateway wire format, so no conversion happens anywhere in the pipeline.
const (
	PackagingBox    = "BOX"
	PackagingPiece  = "PCE"
	PackagingPallet = "PLT"
	PackagingCarton = "CTN"
	PackagingDrum   = "DRM"
	PackagingRoll   = "ROL"

	WeightPounds    = "L"
	WeightKilograms = "K"
	WeightLBR       = "LBR"
	WeightKGM       = "KGM"
)

// TravelDocument is carried on ACI manifests only.
type TravelDocument struct {
	Number        string `json:"number"`
	Type          string `json:"type"`
	StateProvince string `json:"state_province"`
}

// Driver is the canonical driver record. FAST card is optional and only
// meaningful under ACE; travel documents only under ACI.
type Driver struct {
	ID                 uuid.UUID        `json:"id"`
	OwnerID            string           `json:"owner_id"`
	DriverNumber       string           `json:"driver_number"`
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	Gender             Gender           `json:"gender"`
	DateOfBirth        string           `json:"date_of_birth"` // YYYY-MM-DD
	CitizenshipCountry string           `json:"citizenship_country"`
	FastCardNumber     string           `json:"fast_card_number,omitempty"`
	TravelDocuments    []TravelDocument `json:"travel_documents,omitempty"`
	LicenseNumber      string           `json:"license_number"`
	LicenseState       string           `json:"license_state"`
	LicenseExpiry      string           `json:"license_expiry"` // YYYY-MM-DD
}

// Vehicle is the canonical power unit or trailer record. DOT number is
// required under ACI.
type Vehicle struct {
	ID                 uuid.UUID   `json:"id"`
	OwnerID            string      `json:"owner_id"`
	Number             string      `json:"number"`
	Type               VehicleType `json:"type"`
	VINNumber          string      `json:"vin_number"`
	DOTNumber          string      `json:"dot_number,omitempty"`
	LicensePlateNumber string      `json:"license_plate_number"`
	LicensePlateState  string      `json:"license_plate_state"`
}

// InsurancePolicy is attached to a vehicle; required under ACI, never emitted
// in ACE wire payloads.
type InsurancePolicy struct {
	ID           uuid.UUID `json:"id"`
	VehicleID    uuid.UUID `json:"vehicle_id"`
	CompanyName  string    `json:"company_name"`
	PolicyNumber string    `json:"policy_number"`
	IssuedDate   string    `json:"issued_date"` // YYYY-MM-DD
	ExpiryDate   string    `json:"expiry_date"` // YYYY-MM-DD
	PolicyAmount float64   `json:"policy_amount"`
}

// Party is a shipper or consignee with its address.
type Party struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// Shipment is one consignment on a manifest. Every shipment carries at least
// one commodity at submission time.
type Shipment struct {
	ID                    uuid.UUID `json:"id"`
	ManifestID            uuid.UUID `json:"manifest_id"`
	ShipmentControlNumber string    `json:"shipment_control_number"`
	Type                  string    `json:"type"`
	ProvinceOfLoading     string    `json:"province_of_loading"`
	Shipper               Party     `json:"shipper"`
	Consignee             Party     `json:"consignee"`
	CreatedAt             time.Time `json:"created_at"`
}

// CommodityPlacement records which power unit or trailer carries a commodity.
type CommodityPlacement struct {
	Type   string `json:"type"` // TRUCK or TRAILER
	Number string `json:"number"`
}

// Commodity is one line item on a shipment.
type Commodity struct {
	ID            uuid.UUID           `json:"id"`
	ShipmentID    uuid.UUID           `json:"shipment_id"`
	Description   string              `json:"description"`
	Quantity      int                 `json:"quantity"`
	PackagingUnit string              `json:"packaging_unit"`
	Weight        float64             `json:"weight"`
	WeightUnit    string              `json:"weight_unit"`
	LoadedOn      *CommodityPlacement `json:"loaded_on,omitempty"`
}
