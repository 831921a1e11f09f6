package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"borderlink/internal/events"
	"borderlink/internal/manifest/models"
	"borderlink/internal/manifest/store"
	"borderlink/internal/manifest/wire"
	dErrors "borderlink/pkg/domain-errors"
)

type stubGateway struct {
	sent []*wire.Manifest
	ack  json.RawMessage
	err  error
}

func (g *stubGateway) Send(_ context.Context, m *wire.Manifest) (json.RawMessage, error) {
	g.sent = append(g.sent, m)
	if g.err != nil {
		return nil, g.err
	}
	return g.ack, nil
}

func draftBundle(manifestType models.ManifestType) *models.Bundle {
	shipmentID := uuid.New()
	vehicleID := uuid.New()
	b := &models.Bundle{
		Manifest: &models.Manifest{
			OwnerID:          "owner-1",
			ManifestType:     manifestType,
			TripNumber:       "TR123",
			PortOfEntry:      "0901",
			EstimatedArrival: time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC),
			Status:           models.StatusDraft,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		},
		Driver: &models.Driver{
			ID:            uuid.New(),
			DriverNumber:  "D-44",
			FirstName:     "Dana",
			LastName:      "Whitfield",
			Gender:        models.GenderFemale,
			LicenseNumber: "L555",
			LicenseState:  "MI",
		},
		Vehicle: &models.Vehicle{
			ID:                 vehicleID,
			Number:             "TRK-7",
			Type:               models.VehicleTruck,
			VINNumber:          "1FUJA6CK54LM12345",
			LicensePlateNumber: "ABC123",
			LicensePlateState:  "MI",
		},
		Shipments: []models.ShipmentWithCommodities{{
			Shipment: models.Shipment{
				ID:                    shipmentID,
				ShipmentControlNumber: "SCN001",
				Type:                  "PAPS",
			},
			Commodities: []models.Commodity{{
				ID:            uuid.New(),
				ShipmentID:    shipmentID,
				Description:   "Steel castings",
				Quantity:      10,
				PackagingUnit: models.PackagingPallet,
				Weight:        1200,
				WeightUnit:    models.WeightKGM,
			}},
		}},
	}
	if manifestType == models.TypeACI {
		b.Insurance = &models.InsurancePolicy{
			ID:           uuid.New(),
			VehicleID:    vehicleID,
			CompanyName:  "Great Lakes Mutual",
			PolicyNumber: "GLM-100",
			PolicyAmount: 2000000,
		}
	}
	return b
}

func newService(gw *stubGateway) (*Service, *store.Memory, *events.Memory) {
	st := store.NewMemory()
	ev := events.NewMemory()
	svc := New(st, gw, wire.NewFormatter("ck-test"), WithEvents(ev))
	return svc, st, ev
}

func TestSubmitHappyPath(t *testing.T) {
	gw := &stubGateway{ack: json.RawMessage(`{"status":"queued"}`)}
	svc, st, ev := newService(gw)

	m, err := svc.Submit(context.Background(), draftBundle(models.TypeACE))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, models.StatusSubmitted, m.Status)
	assert.JSONEq(t, `{"status":"queued"}`, string(m.GatewayResponse))

	stored, err := st.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, stored.Status)

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "ACE_TRIP", gw.sent[0].Data)
	assert.False(t, gw.sent[0].AutoSend)

	emitted := ev.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.ActionManifestSubmitted, emitted[0].Action)
	assert.Equal(t, m.ID, emitted[0].ManifestID)
}

func TestSubmitValidationViolationsNeverReachNetwork(t *testing.T) {
	gw := &stubGateway{ack: json.RawMessage(`{}`)}
	svc, st, _ := newService(gw)

	b := draftBundle(models.TypeACI)
	b.Insurance = nil
	b.Manifest.TripNumber = ""

	_, err := svc.Submit(context.Background(), b)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	// Nothing was stored and nothing was sent.
	assert.Empty(t, gw.sent)
	list, err := st.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitGatewayFailureLeavesDraftRecoverable(t *testing.T) {
	gw := &stubGateway{err: dErrors.New(dErrors.CodeUnavailable, "gateway error 502")}
	svc, st, ev := newService(gw)

	b := draftBundle(models.TypeACE)
	_, err := svc.Submit(context.Background(), b)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	// The stored record never left draft, so a retry can resubmit.
	stored, err := st.Get(context.Background(), b.Manifest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)

	emitted := ev.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.ActionManifestSubmissionFailed, emitted[0].Action)
}

func TestSubmitRetryAfterGatewayFailureResends(t *testing.T) {
	gw := &stubGateway{err: dErrors.New(dErrors.CodeUnavailable, "gateway error 502")}
	svc, st, _ := newService(gw)

	b := draftBundle(models.TypeACE)
	_, err := svc.Submit(context.Background(), b)
	require.Error(t, err)
	firstID := b.Manifest.ID
	require.NotEqual(t, uuid.Nil, firstID)

	// Retrying the same draft re-sends without creating a second record.
	gw.err = nil
	gw.ack = json.RawMessage(`{"status":"queued"}`)
	m, err := svc.Submit(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, firstID, m.ID)
	assert.Equal(t, models.StatusSubmitted, m.Status)

	list, err := st.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmitRetryPersistsEditedFields(t *testing.T) {
	gw := &stubGateway{err: dErrors.New(dErrors.CodeUnavailable, "gateway error 502")}
	svc, st, _ := newService(gw)

	b := draftBundle(models.TypeACE)
	_, err := svc.Submit(context.Background(), b)
	require.Error(t, err)

	// The user edits from review before retrying; the stored row must match
	// what the gateway receives.
	b.Manifest.TripNumber = "TR999"
	b.Manifest.PortOfEntry = "0712"
	gw.err = nil
	gw.ack = json.RawMessage(`{"status":"queued"}`)

	_, err = svc.Submit(context.Background(), b)
	require.NoError(t, err)

	require.Len(t, gw.sent, 2)
	assert.Equal(t, "TR999", gw.sent[1].TripNumber)

	stored, err := st.Get(context.Background(), b.Manifest.ID)
	require.NoError(t, err)
	assert.Equal(t, "TR999", stored.TripNumber)
	assert.Equal(t, "0712", stored.PortOfEntry)
}

func TestSubmitCrossOwnerResubmissionRejected(t *testing.T) {
	gw := &stubGateway{err: dErrors.New(dErrors.CodeUnavailable, "gateway error 502")}
	svc, st, _ := newService(gw)

	victim := draftBundle(models.TypeACE)
	_, err := svc.Submit(context.Background(), victim)
	require.Error(t, err)
	require.NotEqual(t, uuid.Nil, victim.Manifest.ID)

	gw.err = nil
	gw.ack = json.RawMessage(`{}`)
	sentBefore := len(gw.sent)

	// Another owner presenting the stored manifest's ID must get the same
	// answer as any other missing manifest, and nothing may reach the gateway.
	attacker := draftBundle(models.TypeACE)
	attacker.Manifest.OwnerID = "owner-2"
	attacker.Manifest.ID = victim.Manifest.ID

	_, err = svc.Submit(context.Background(), attacker)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Len(t, gw.sent, sentBefore)

	stored, err := st.Get(context.Background(), victim.Manifest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)
	assert.Equal(t, "owner-1", stored.OwnerID)
	assert.Equal(t, "TR123", stored.TripNumber)
}

func TestSubmitAlreadySubmittedRejected(t *testing.T) {
	gw := &stubGateway{ack: json.RawMessage(`{}`)}
	svc, _, _ := newService(gw)

	b := draftBundle(models.TypeACE)
	b.Manifest.Status = models.StatusSubmitted

	_, err := svc.Submit(context.Background(), b)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Empty(t, gw.sent)
}

func TestRecordDecision(t *testing.T) {
	gw := &stubGateway{ack: json.RawMessage(`{"status":"queued"}`)}
	svc, _, ev := newService(gw)

	m, err := svc.Submit(context.Background(), draftBundle(models.TypeACI))
	require.NoError(t, err)

	decided, err := svc.RecordDecision(context.Background(), m.ID, models.StatusApproved, json.RawMessage(`{"decision":"accepted"}`))
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)

	// Terminal states are frozen.
	_, err = svc.RecordDecision(context.Background(), m.ID, models.StatusRejected, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// Only gateway decisions are accepted here.
	_, err = svc.RecordDecision(context.Background(), m.ID, models.StatusSubmitted, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	emitted := ev.Events()
	require.Len(t, emitted, 2)
	assert.Equal(t, events.ActionManifestDecisionRecorded, emitted[1].Action)
}

func TestRecordDecisionUnknownManifest(t *testing.T) {
	svc, _, _ := newService(&stubGateway{})
	_, err := svc.RecordDecision(context.Background(), uuid.New(), models.StatusApproved, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestGetScopedToOwner(t *testing.T) {
	gw := &stubGateway{ack: json.RawMessage(`{}`)}
	svc, _, _ := newService(gw)

	m, err := svc.Submit(context.Background(), draftBundle(models.TypeACE))
	require.NoError(t, err)

	found, err := svc.Get(context.Background(), "owner-1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, found.ID)

	_, err = svc.Get(context.Background(), "someone-else", m.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
