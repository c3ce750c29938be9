package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/odontogram"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
	PatientStatusPending  PatientStatus = "pending"
	PatientStatusArchived PatientStatus = "archived"
)

func (s PatientStatus) Valid() bool {
	switch s {
	case PatientStatusActive, PatientStatusInactive, PatientStatusPending, PatientStatusArchived:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// MedicalConditions is the medical history questionnaire.
type MedicalConditions struct {
	Diabetes          bool `json:"diabetes"`
	HeartDisease      bool `json:"heart_disease"`
	Hypertension      bool `json:"hypertension"`
	Hypotension       bool `json:"hypotension"`
	Seizures          bool `json:"seizures"`
	Arthritis         bool `json:"arthritis"`
	Allergies         bool `json:"allergies"`
	BleedingDisorders bool `json:"bleeding_disorders"`
	Hepatitis         bool `json:"hepatitis"`
	HIV               bool `json:"hiv"`
	Tuberculosis      bool `json:"tuberculosis"`
}

func (m MedicalConditions) Value() (driver.Value, error) { return jsonValue(m) }
func (m *MedicalConditions) Scan(src interface{}) error { return scanJSON(src, m) }

type VitalSigns struct {
	BloodPressure       string  `json:"blood_pressure"`
	Pulse               int     `json:"pulse"`
	Temperature         float64 `json:"temperature"`
	IndicatedAnesthesia string  `json:"indicated_anesthesia,omitempty"`
	MedicalDiagnosis    string  `json:"medical_diagnosis,omitempty"`
}

func (v VitalSigns) Value() (driver.Value, error) { return jsonValue(v) }
func (v *VitalSigns) Scan(src interface{}) error { return scanJSON(src, v) }

type DentalCalculus struct {
	Supragingival bool `json:"supragingival"`
	Subgingival   bool `json:"subgingival"`
}

// OralExamination records the oral cavity examination.
type OralExamination struct {
	SoftTissues          string         `json:"soft_tissues"`
	AlveolarProcess      string         `json:"alveolar_process"`
	TMJCondition         string         `json:"tmj_condition"`
	Occlusion            string         `json:"occlusion"`
	PeriodontalCondition string         `json:"periodontal_condition"`
	BacterialPlaque      bool           `json:"bacterial_plaque"`
	DentalCalculus       DentalCalculus `json:"dental_calculus"`
	RadiologicalNeeds    string         `json:"radiological_needs"`
	StudyModelsNeeded    bool           `json:"study_models_needed"`
}

func (o OralExamination) Value() (driver.Value, error) { return jsonValue(o) }
func (o *OralExamination) Scan(src interface{}) error { return scanJSON(src, o) }

type Patient struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	FirstName          string            `db:"first_name" json:"first_name"`
	LastName           string            `db:"last_name" json:"last_name"`
	Age                *int              `db:"age" json:"age,omitempty"`
	Gender             Gender            `db:"gender" json:"gender"`
	Occupation         string            `db:"occupation" json:"occupation"`
	Phone              string            `db:"phone" json:"phone"`
	Address            string            `db:"address" json:"address"`
	Email              string            `db:"email" json:"email,omitempty"`
	MedicalConditions  MedicalConditions `db:"medical_conditions" json:"medical_conditions"`
	PregnancyTrimester *int              `db:"pregnancy_trimester" json:"pregnancy_trimester,omitempty"`
	CurrentMedications pq.StringArray    `db:"current_medications" json:"current_medications"`
	VitalSigns         VitalSigns        `db:"vital_signs" json:"vital_signs"`
	OralExamination    OralExamination   `db:"oral_examination" json:"oral_examination"`
	DentalChart        odontogram.Chart  `db:"dental_chart" json:"dental_chart"`
	TreatmentPlan      string            `db:"treatment_plan" json:"treatment_plan,omitempty"`
	TotalCost          float64           `db:"total_cost" json:"total_cost"`
	Status             PatientStatus     `db:"status" json:"status"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ChartReadOnly reports whether the dental chart is closed for edits.
func (p *Patient) ChartReadOnly() bool {
	return p.Status == PatientStatusArchived
}

type CreatePatientRequest struct {
	FirstName          string            `json:"first_name" binding:"required,max=100"`
	LastName           string            `json:"last_name" binding:"required,max=100"`
	Age                *int              `json:"age" binding:"omitempty,min=0,max=130"`
	Gender             Gender            `json:"gender" binding:"required,oneof=male female other"`
	Occupation         string            `json:"occupation" binding:"max=100"`
	Phone              string            `json:"phone" binding:"required,max=30"`
	Address            string            `json:"address" binding:"max=255"`
	Email              string            `json:"email" binding:"omitempty,email"`
	MedicalConditions  MedicalConditions `json:"medical_conditions"`
	PregnancyTrimester *int              `json:"pregnancy_trimester" binding:"omitempty,min=1,max=3"`
	CurrentMedications []string          `json:"current_medications"`
	VitalSigns         VitalSigns        `json:"vital_signs"`
	OralExamination    OralExamination   `json:"oral_examination"`
	TreatmentPlan      string            `json:"treatment_plan"`
	TotalCost          float64           `json:"total_cost" binding:"min=0"`
	Status             PatientStatus     `json:"status" binding:"omitempty,oneof=active inactive pending archived"`
}

type UpdatePatientRequest struct {
	FirstName          *string            `json:"first_name" binding:"omitempty,max=100"`
	LastName           *string            `json:"last_name" binding:"omitempty,max=100"`
	Age                *int               `json:"age" binding:"omitempty,min=0,max=130"`
	Gender             *Gender            `json:"gender" binding:"omitempty,oneof=male female other"`
	Occupation         *string            `json:"occupation"`
	Phone              *string            `json:"phone" binding:"omitempty,max=30"`
	Address            *string            `json:"address"`
	Email              *string            `json:"email" binding:"omitempty,email"`
	MedicalConditions  *MedicalConditions `json:"medical_conditions"`
	PregnancyTrimester *int               `json:"pregnancy_trimester" binding:"omitempty,min=1,max=3"`
	CurrentMedications []string           `json:"current_medications"`
	VitalSigns         *VitalSigns        `json:"vital_signs"`
	OralExamination    *OralExamination   `json:"oral_examination"`
	TreatmentPlan      *string            `json:"treatment_plan"`
	TotalCost          *float64           `json:"total_cost" binding:"omitempty,min=0"`
}

type UpdatePatientStatusRequest struct {
	Status PatientStatus `json:"status" binding:"required,oneof=active inactive pending archived"`
}

type PatientFilters struct {
	Pagination
	SearchTerm string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive pending archived"`
	Gender     string `form:"gender" binding:"omitempty,oneof=male female other"`
	MinAge     *int   `form:"min_age" binding:"omitempty,min=0"`
	MaxAge     *int   `form:"max_age" binding:"omitempty,min=0"`
}

// PatientName is the projection used to label appointments and payments.
type PatientName struct {
	ID        uuid.UUID `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
}

func (p PatientName) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PatientHistory groups everything recorded for a patient.
type PatientHistory struct {
	Patient      *Patient       `json:"patient"`
	Appointments []*Appointment `json:"appointments"`
	Payments     []*Payment     `json:"payments"`
}

// AddTreatmentRequest records a treatment on a tooth of the dental chart.
type AddTreatmentRequest struct {
	Type        odontogram.TreatmentType   `json:"type" binding:"required"`
	Date        string                     `json:"date" binding:"required,datetime=2006-01-02"`
	Status      odontogram.TreatmentStatus `json:"status" binding:"omitempty,oneof=scheduled in-progress completed"`
	Description string                     `json:"description" binding:"max=500"`
	Cost        float64                    `json:"cost" binding:"min=0"`
	Notes       string                     `json:"notes" binding:"max=1000"`
}

// DentalChartView is the chart as served to clients, with its layout.
type DentalChartView struct {
	PatientID uuid.UUID               `json:"patient_id"`
	ReadOnly  bool                    `json:"read_only"`
	Upper     []int                   `json:"upper_arch"`
	Lower     []int                   `json:"lower_arch"`
	Chart     odontogram.Chart        `json:"chart"`
	Fills     map[int]odontogram.Fill `json:"fills"`
}
