// Package wire defines the BorderConnect payload schema and the pure
// transformation from canonical records into it. The wire shape is distinct
// from the storage shape: field names are camelCase and optional sub-objects
// are present only when their source data exists.
package wire

import (
	"fmt"

	"github.com/google/uuid"
)

// Operation is fixed for this service; updates and deletes go through a new
// submission, never an in-place gateway mutation.
const OperationCreate = "CREATE"

// LoadedOn vehicle kinds for commodity placement.
const (
	LoadedOnTruck   = "TRUCK"
	LoadedOnTrailer = "TRAILER"
)

// FormatError reports structurally absent upstream data. It should be
// unreachable when the validator gate is enforced; the formatter still fails
// loudly rather than emit a partial payload.
type FormatError struct {
	ManifestID uuid.UUID
	Reason     string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("FORMAT_ERROR: manifest %s: %s", e.ManifestID, e.Reason)
}

type Address struct {
	AddressLine   string `json:"addressLine"`
	City          string `json:"city"`
	StateProvince string `json:"stateProvince"`
	PostalCode    string `json:"postalCode"`
}

type Party struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

type LicensePlate struct {
	Number        string `json:"number"`
	StateProvince string `json:"stateProvince"`
}

type InsurancePolicy struct {
	InsuranceCompanyName string  `json:"insuranceCompanyName"`
	PolicyNumber         string  `json:"policyNumber"`
	IssuedDate           string  `json:"issuedDate"`
	PolicyAmount         float64 `json:"policyAmount"`
}

type Vehicle struct {
	Number          string           `json:"number"`
	Type            string           `json:"type"`
	VinNumber       string           `json:"vinNumber"`
	DotNumber       string           `json:"dotNumber,omitempty"`
	LicensePlate    LicensePlate     `json:"licensePlate"`
	InsurancePolicy *InsurancePolicy `json:"insurancePolicy,omitempty"`
}

type TravelDocument struct {
	Number        string `json:"number"`
	Type          string `json:"type"`
	StateProvince string `json:"stateProvince"`
}

type Driver struct {
	DriverNumber       string           `json:"driverNumber"`
	FirstName          string           `json:"firstName"`
	LastName           string           `json:"lastName"`
	Gender             string           `json:"gender"`
	DateOfBirth        string           `json:"dateOfBirth"`
	CitizenshipCountry string           `json:"citizenshipCountry"`
	FastCardNumber     string           `json:"fastCardNumber,omitempty"`
	TravelDocuments    []TravelDocument `json:"travelDocuments,omitempty"`
}

type LoadedOn struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type Commodity struct {
	Description   string    `json:"description"`
	Quantity      int       `json:"quantity"`
	PackagingUnit string    `json:"packagingUnit"`
	Weight        float64   `json:"weight"`
	WeightUnit    string    `json:"weightUnit"`
	LoadedOn      *LoadedOn `json:"loadedOn,omitempty"`
}

type Shipment struct {
	Data                  string      `json:"data"`
	SendID                string      `json:"sendId"`
	CompanyKey            string      `json:"companyKey"`
	Operation             string      `json:"operation"`
	Type                  string      `json:"type"`
	ShipmentControlNumber string      `json:"shipmentControlNumber"`
	ProvinceOfLoading     string      `json:"provinceOfLoading,omitempty"`
	Shipper               Party       `json:"shipper"`
	Consignee             Party       `json:"consignee"`
	Commodities           []Commodity `json:"commodities"`
}

// Manifest is the top-level gateway payload. AutoSend is always false: the
// payload is queued at the gateway, never auto-dispatched.
type Manifest struct {
	Data                     string     `json:"data"`
	SendID                   string     `json:"sendId"`
	CompanyKey               string     `json:"companyKey"`
	Operation                string     `json:"operation"`
	TripNumber               string     `json:"tripNumber"`
	USPortOfArrival          string     `json:"usPortOfArrival,omitempty"`
	PortOfEntry              string     `json:"portOfEntry,omitempty"`
	EstimatedArrivalDateTime string     `json:"estimatedArrivalDateTime"`
	Truck                    Vehicle    `json:"truck"`
	Trailers                 []Vehicle  `json:"trailers,omitempty"`
	Drivers                  []Driver   `json:"drivers"`
	Shipments                []Shipment `json:"shipments"`
	AutoSend                 bool       `json:"autoSend"`
}
