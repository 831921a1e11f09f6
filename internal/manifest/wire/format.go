package wire

import (
	"github.com/google/uuid"

	"borderlink/internal/manifest/models"
	"borderlink/internal/manifest/policy"
	"borderlink/internal/manifest/validate"
)

// BorderConnect expects local wall-clock arrival times without a zone suffix.
const arrivalTimeLayout = "2006-01-02 15:04"

// Formatter turns a validated bundle into a gateway payload. It is pure: no
// I/O, deterministic except for sendIds, and safe to call from any goroutine.
//
// The company key is injected at construction rather than read from ambient
// process state so tests and multi-tenant deployments can scope it.
type Formatter struct {
	companyKey string
	newSendID  func() string
}

// Option configures a Formatter.
type Option func(f *Formatter)

// WithSendIDFunc overrides sendId generation. Tests use this to make output
// fully deterministic.
func WithSendIDFunc(fn func() string) Option {
	return func(f *Formatter) {
		f.newSendID = fn
	}
}

// NewFormatter constructs a Formatter bound to a company key.
func NewFormatter(companyKey string, opts ...Option) *Formatter {
	f := &Formatter{
		companyKey: companyKey,
		// UUIDs are unique within any batch size the gateway will ever see;
		// the timestamp+random scheme this replaces could collide under rapid
		// submission.
		newSendID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format emits the wire manifest for a validated bundle. Exactly one driver
// and one truck; insurancePolicy appears iff insurance is present; the data
// tags come from the manifest type policy.
func (f *Formatter) Format(valid *validate.ValidBundle) (*Manifest, error) {
	b := valid.Bundle()

	// Defensive gate: the validator makes these unreachable, but a partial
	// payload at the gateway is worse than a failed attempt.
	if b == nil || b.Manifest == nil {
		return nil, &FormatError{Reason: "manifest record is absent"}
	}
	if b.Driver == nil {
		return nil, &FormatError{ManifestID: b.Manifest.ID, Reason: "driver record is absent"}
	}
	if b.Vehicle == nil {
		return nil, &FormatError{ManifestID: b.Manifest.ID, Reason: "vehicle record is absent"}
	}

	m := &Manifest{
		Data:                     policy.TripTag(b.Manifest.ManifestType),
		SendID:                   f.newSendID(),
		CompanyKey:               f.companyKey,
		Operation:                OperationCreate,
		TripNumber:               b.Manifest.TripNumber,
		EstimatedArrivalDateTime: b.Manifest.EstimatedArrival.Format(arrivalTimeLayout),
		Truck:                    f.formatVehicle(b.Vehicle, b.Insurance),
		Drivers:                  []Driver{f.formatDriver(b.Driver, b.Manifest.ManifestType)},
		Shipments:                make([]Shipment, 0, len(b.Shipments)),
		AutoSend:                 false,
	}

	for _, trailer := range b.Trailers {
		m.Trailers = append(m.Trailers, f.formatVehicle(&trailer, nil))
	}

	// The two dialects name the crossing port differently.
	if b.Manifest.ManifestType == models.TypeACE {
		m.USPortOfArrival = b.Manifest.PortOfEntry
	} else {
		m.PortOfEntry = b.Manifest.PortOfEntry
	}

	shipmentTag := policy.ShipmentTag(b.Manifest.ManifestType)
	for _, s := range b.Shipments {
		m.Shipments = append(m.Shipments, f.formatShipment(s, shipmentTag))
	}

	return m, nil
}

func (f *Formatter) formatVehicle(v *models.Vehicle, insurance *models.InsurancePolicy) Vehicle {
	out := Vehicle{
		Number:    v.Number,
		Type:      string(v.Type),
		VinNumber: v.VINNumber,
		DotNumber: v.DOTNumber,
		LicensePlate: LicensePlate{
			Number:        v.LicensePlateNumber,
			StateProvince: v.LicensePlateState,
		},
	}
	if insurance != nil {
		out.InsurancePolicy = &InsurancePolicy{
			InsuranceCompanyName: insurance.CompanyName,
			PolicyNumber:         insurance.PolicyNumber,
			IssuedDate:           insurance.IssuedDate,
			PolicyAmount:         insurance.PolicyAmount,
		}
	}
	return out
}

func (f *Formatter) formatDriver(d *models.Driver, manifestType models.ManifestType) Driver {
	out := Driver{
		DriverNumber:       d.DriverNumber,
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		Gender:             string(d.Gender),
		DateOfBirth:        d.DateOfBirth,
		CitizenshipCountry: d.CitizenshipCountry,
		FastCardNumber:     d.FastCardNumber,
	}
	// Travel documents ride only on ACI manifests.
	if manifestType == models.TypeACI && len(d.TravelDocuments) > 0 {
		out.TravelDocuments = make([]TravelDocument, 0, len(d.TravelDocuments))
		for _, td := range d.TravelDocuments {
			out.TravelDocuments = append(out.TravelDocuments, TravelDocument{
				Number:        td.Number,
				Type:          td.Type,
				StateProvince: td.StateProvince,
			})
		}
	}
	return out
}

func (f *Formatter) formatShipment(s models.ShipmentWithCommodities, tag string) Shipment {
	out := Shipment{
		Data:                  tag,
		SendID:                f.newSendID(),
		CompanyKey:            f.companyKey,
		Operation:             OperationCreate,
		Type:                  s.Shipment.Type,
		ShipmentControlNumber: s.Shipment.ShipmentControlNumber,
		ProvinceOfLoading:     s.Shipment.ProvinceOfLoading,
		Shipper:               formatParty(s.Shipment.Shipper),
		Consignee:             formatParty(s.Shipment.Consignee),
		Commodities:           make([]Commodity, 0, len(s.Commodities)),
	}
	for _, c := range s.Commodities {
		// Unit enums pass through unchanged; storage and wire share tokens.
		wc := Commodity{
			Description:   c.Description,
			Quantity:      c.Quantity,
			PackagingUnit: c.PackagingUnit,
			Weight:        c.Weight,
			WeightUnit:    c.WeightUnit,
		}
		if c.LoadedOn != nil {
			wc.LoadedOn = &LoadedOn{Type: c.LoadedOn.Type, Number: c.LoadedOn.Number}
		}
		out.Commodities = append(out.Commodities, wc)
	}
	return out
}

func formatParty(p models.Party) Party {
	return Party{
		Name: p.Name,
		Address: Address{
			AddressLine:   p.Address,
			City:          p.City,
			StateProvince: p.State,
			PostalCode:    p.PostalCode,
		},
	}
}
