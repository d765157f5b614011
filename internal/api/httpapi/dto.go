package httpapi

import (
	"time"

	"github.com/harborworks/marinedesk/internal/workflow"
	"github.com/harborworks/marinedesk/internal/workflow/engine"
	"github.com/harborworks/marinedesk/internal/workflow/storage"
)

type payloadBody struct {
	Title       string `json:"title"`
	Details     string `json:"details,omitempty"`
	ServiceType string `json:"service_type,omitempty"`
	Location    string `json:"location,omitempty"`
	ShipType    string `json:"ship_type,omitempty"`
}

type createRequest struct {
	TargetID   string      `json:"target_id"`
	VesselID   string      `json:"vessel_id,omitempty"`
	VesselName string      `json:"vessel_name,omitempty"`
	Payload    payloadBody `json:"payload"`
}

type updateRequest struct {
	TargetID   string      `json:"target_id"`
	VesselID   string      `json:"vessel_id,omitempty"`
	VesselName string      `json:"vessel_name,omitempty"`
	Payload    payloadBody `json:"payload"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note,omitempty"`
}

type assignmentRequest struct {
	Location     string   `json:"location,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	PhotoURLs    []string `json:"photo_urls,omitempty"`
	DocumentURLs []string `json:"document_urls,omitempty"`
}

type assignmentBody struct {
	Location     string   `json:"location,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	PhotoURLs    []string `json:"photo_urls,omitempty"`
	DocumentURLs []string `json:"document_urls,omitempty"`
	AssignedAt   string   `json:"assigned_at"`
}

type recordBody struct {
	ID           string          `json:"id"`
	Family       string          `json:"family"`
	InitiatorID  string          `json:"initiator_id"`
	TargetID     string          `json:"target_id"`
	VesselID     string          `json:"vessel_id,omitempty"`
	VesselName   string          `json:"vessel_name,omitempty"`
	OwnerID      string          `json:"owner_id,omitempty"`
	Status       string          `json:"status"`
	Payload      payloadBody     `json:"payload"`
	DecidedBy    string          `json:"decided_by,omitempty"`
	DecidedAt    string          `json:"decided_at,omitempty"`
	DecisionNote string          `json:"decision_note,omitempty"`
	Assignment   *assignmentBody `json:"assignment,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type pageBody struct {
	Records       []recordBody `json:"records"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

func toPayload(body payloadBody) workflow.Payload {
	return workflow.Payload{
		Title:       body.Title,
		Details:     body.Details,
		ServiceType: body.ServiceType,
		Location:    body.Location,
		ShipType:    body.ShipType,
	}
}

func toCreateInput(body createRequest) engine.CreateInput {
	return engine.CreateInput{
		TargetID:   body.TargetID,
		VesselID:   body.VesselID,
		VesselName: body.VesselName,
		Payload:    toPayload(body.Payload),
	}
}

func toUpdateInput(body updateRequest) engine.UpdateInput {
	return engine.UpdateInput{
		TargetID:   body.TargetID,
		VesselID:   body.VesselID,
		VesselName: body.VesselName,
		Payload:    toPayload(body.Payload),
	}
}

func toAssignment(body assignmentRequest) workflow.Assignment {
	return workflow.Assignment{
		Location:     body.Location,
		Notes:        body.Notes,
		PhotoURLs:    body.PhotoURLs,
		DocumentURLs: body.DocumentURLs,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toRecordBody(record workflow.Record) recordBody {
	body := recordBody{
		ID:          record.ID,
		Family:      workflow.FamilyLabel(record.Family),
		InitiatorID: record.InitiatorID,
		TargetID:    record.TargetID,
		VesselID:    record.VesselID,
		VesselName:  record.VesselName,
		OwnerID:     record.OwnerID,
		Status:      workflow.StatusLabel(record.Status),
		Payload: payloadBody{
			Title:       record.Payload.Title,
			Details:     record.Payload.Details,
			ServiceType: record.Payload.ServiceType,
			Location:    record.Payload.Location,
			ShipType:    record.Payload.ShipType,
		},
		DecidedBy:    record.DecidedBy,
		DecidedAt:    formatTime(record.DecidedAt),
		DecisionNote: record.DecisionNote,
		CreatedAt:    formatTime(record.CreatedAt),
		UpdatedAt:    formatTime(record.UpdatedAt),
	}
	if record.Assignment != nil {
		body.Assignment = &assignmentBody{
			Location:     record.Assignment.Location,
			Notes:        record.Assignment.Notes,
			PhotoURLs:    record.Assignment.PhotoURLs,
			DocumentURLs: record.Assignment.DocumentURLs,
			AssignedAt:   formatTime(record.Assignment.AssignedAt),
		}
	}
	return body
}

func toPageBody(page storage.RecordPage) pageBody {
	body := pageBody{
		Records:       make([]recordBody, 0, len(page.Records)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Records {
		body.Records = append(body.Records, toRecordBody(record))
	}
	return body
}
