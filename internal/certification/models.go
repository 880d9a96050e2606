// Package certification holds the brand-certification record domain: the
// record entity, its enumerations, and the status transition table that the
// transition engine enforces.
package certification

import (
	"time"

	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
)

// Status is the review state of a certification record.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusInReview Status = "IN_REVIEW"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// transitions is the single source of truth for legal status changes.
// Only listed edges are legal; terminal states have no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:  {StatusInReview, StatusApproved, StatusRejected},
	StatusInReview: {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown status %q", s)
	}
	return st, nil
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether s -> next is an edge in the table.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidNext returns the allowed target statuses from s.
func (s Status) ValidNext() []Status {
	return append([]Status{}, transitions[s]...)
}

// Purpose classifies what the herd is raised for.
type Purpose string

const (
	PurposeMeat     Purpose = "MEAT"
	PurposeDairy    Purpose = "DAIRY"
	PurposeDual     Purpose = "DUAL_PURPOSE"
	PurposeBreeding Purpose = "BREEDING"
)

// Purposes lists all herd purposes in display order.
var Purposes = []Purpose{PurposeMeat, PurposeDairy, PurposeDual, PurposeBreeding}

// ParsePurpose constructs a Purpose from external input.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	for _, known := range Purposes {
		if p == known {
			return p, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown purpose %q", s)
}

// Breed is the predominant cattle breed of the herd.
type Breed string

const (
	BreedCriollo        Breed = "CRIOLLO"
	BreedNelore         Breed = "NELORE"
	BreedBrahman        Breed = "BRAHMAN"
	BreedSantaGertrudis Breed = "SANTA_GERTRUDIS"
	BreedCharolais      Breed = "CHAROLAIS"
	BreedHolstein       Breed = "HOLSTEIN"
	BreedSimmental      Breed = "SIMMENTAL"
	BreedAngus          Breed = "ANGUS"
	BreedHereford       Breed = "HEREFORD"
	BreedGuzerat        Breed = "GUZERAT"
	BreedMixed          Breed = "MIXTO"
	BreedOther          Breed = "OTRO"
)

var validBreeds = map[Breed]bool{
	BreedCriollo: true, BreedNelore: true, BreedBrahman: true,
	BreedSantaGertrudis: true, BreedCharolais: true, BreedHolstein: true,
	BreedSimmental: true, BreedAngus: true, BreedHereford: true,
	BreedGuzerat: true, BreedMixed: true, BreedOther: true,
}

// ParseBreed constructs a Breed from external input.
func ParseBreed(s string) (Breed, error) {
	b := Breed(s)
	if !validBreeds[b] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown breed %q", s)
	}
	return b, nil
}

// Department is one of the nine Bolivian departments.
type Department string

const (
	DeptLaPaz      Department = "LA_PAZ"
	DeptSantaCruz  Department = "SANTA_CRUZ"
	DeptCochabamba Department = "COCHABAMBA"
	DeptPotosi     Department = "POTOSI"
	DeptOruro      Department = "ORURO"
	DeptChuquisaca Department = "CHUQUISACA"
	DeptTarija     Department = "TARIJA"
	DeptBeni       Department = "BENI"
	DeptPando      Department = "PANDO"
)

// Departments lists all departments.
var Departments = []Department{
	DeptLaPaz, DeptSantaCruz, DeptCochabamba, DeptPotosi, DeptOruro,
	DeptChuquisaca, DeptTarija, DeptBeni, DeptPando,
}

// ParseDepartment constructs a Department from external input.
func ParseDepartment(s string) (Department, error) {
	d := Department(s)
	for _, known := range Departments {
		if d == known {
			return d, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown department %q", s)
}

// Record is a producer's brand-registration request under review.
//
// Invariants: HeadCount >= 1; Amount >= 0; ProcessedAt, when set, is never
// before RegisteredAt; Status is one of the enum values. RegisteredAt is set
// at creation and never changes. ProcessedAt and ProcessingHours are set only
// on the terminal transition. Version backs optimistic concurrency: Save
// rejects writes whose Version no longer matches the stored row.
type Record struct {
	ID          id.RecordID
	BrandNumber string
	OwnerName   string
	NationalID  string

	Breed        Breed
	Purpose      Purpose
	HeadCount    int
	Department   Department
	Municipality string

	// Amount is the certification fee in bolivianos, stored as integer
	// centavos to avoid float drift.
	Amount int64

	Status          Status
	RegisteredAt    time.Time
	ProcessedAt     *time.Time
	ProcessingHours *int

	Version int
}

// Validate enforces the record invariants at trust boundaries.
func (r *Record) Validate() error {
	if r.BrandNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "brand number is required")
	}
	if r.HeadCount < 1 {
		return dErrors.New(dErrors.CodeValidation, "head count must be at least 1")
	}
	if r.Amount < 0 {
		return dErrors.New(dErrors.CodeValidation, "certification amount cannot be negative")
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	if _, err := ParsePurpose(string(r.Purpose)); err != nil {
		return err
	}
	if _, err := ParseBreed(string(r.Breed)); err != nil {
		return err
	}
	if _, err := ParseDepartment(string(r.Department)); err != nil {
		return err
	}
	if r.ProcessedAt != nil && r.ProcessedAt.Before(r.RegisteredAt) {
		return dErrors.New(dErrors.CodeValidation, "processed_at cannot precede registered_at")
	}
	return nil
}

// IsProcessed reports whether the record reached a terminal status.
func (r *Record) IsProcessed() bool {
	return r.Status.IsTerminal()
}
