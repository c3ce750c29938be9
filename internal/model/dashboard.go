package model

// DashboardStats is the landing page summary.
type DashboardStats struct {
	TotalPatients     int              `json:"total_patients"`
	NewPatients       int              `json:"new_patients"`
	PatientGrowth     float64          `json:"patient_growth"`
	TodayAppointments []*Appointment   `json:"today_appointments"`
	Upcoming          []*Appointment   `json:"upcoming_appointments"`
	LowStock          []*InventoryItem `json:"low_stock"`
	TreatmentCounts   map[string]int   `json:"treatment_counts"`
	Month             AppointmentStats `json:"month"`
}
