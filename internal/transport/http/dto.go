// Package httptransport is the thin HTTP layer over the certification core.
// Handlers decode, delegate, and encode; business rules live in the domain
// packages.
package httptransport

import (
	"time"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
)

// recordDTO is the wire shape of a certification record.
type recordDTO struct {
	ID              string     `json:"id"`
	BrandNumber     string     `json:"brand_number"`
	OwnerName       string     `json:"owner_name"`
	NationalID      string     `json:"national_id"`
	Breed           string     `json:"breed"`
	Purpose         string     `json:"purpose"`
	HeadCount       int        `json:"head_count"`
	Department      string     `json:"department"`
	Municipality    string     `json:"municipality"`
	AmountCentavos  int64      `json:"amount_centavos"`
	Status          string     `json:"status"`
	RegisteredAt    time.Time  `json:"registered_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessingHours *int       `json:"processing_hours,omitempty"`
	Version         int        `json:"version"`
}

func toRecordDTO(record *certification.Record) recordDTO {
	return recordDTO{
		ID:              record.ID.String(),
		BrandNumber:     record.BrandNumber,
		OwnerName:       record.OwnerName,
		NationalID:      record.NationalID,
		Breed:           string(record.Breed),
		Purpose:         string(record.Purpose),
		HeadCount:       record.HeadCount,
		Department:      string(record.Department),
		Municipality:    record.Municipality,
		AmountCentavos:  record.Amount,
		Status:          string(record.Status),
		RegisteredAt:    record.RegisteredAt,
		ProcessedAt:     record.ProcessedAt,
		ProcessingHours: record.ProcessingHours,
		Version:         record.Version,
	}
}

// entryDTO is the wire shape of an audit entry.
type entryDTO struct {
	ID             string    `json:"id"`
	RecordID       string    `json:"record_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangedAt      time.Time `json:"changed_at"`
	Actor          string    `json:"actor"`
	Notes          string    `json:"notes,omitempty"`
	TraceID        string    `json:"trace_id,omitempty"`
}

func toEntryDTO(entry audittrail.Entry) entryDTO {
	return entryDTO{
		ID:             entry.ID.String(),
		RecordID:       entry.RecordID.String(),
		PreviousStatus: string(entry.PreviousStatus),
		NewStatus:      string(entry.NewStatus),
		ChangedAt:      entry.ChangedAt,
		Actor:          entry.Actor,
		Notes:          entry.Notes,
		TraceID:        entry.TraceID,
	}
}

func toEntryDTOs(entries []audittrail.Entry) []entryDTO {
	dtos := make([]entryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, toEntryDTO(entry))
	}
	return dtos
}
