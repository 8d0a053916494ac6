package memory

import (
	"time"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// Manila is UTC+8 without DST.
var Manila = time.FixedZone("PHT", 8*60*60)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, Manila)
}

// SeedReports are the sample reports used in development mode.
func SeedReports() []domain.Report {
	return []domain.Report{
		{ID: "1", Type: "Theft / Robbery", Description: "Bag snatched near the barangay hall along Norzagaray-Santa Maria Road. Suspect fled on motorcycle.", Location: domain.Location{Lat: 14.8600, Lng: 120.9850}, Status: domain.StatusPending, Reporter: "Anonymous", ReportedAt: at(2024, time.December, 15, 14, 30)},
		{ID: "2", Type: "Traffic Incident", Description: "Tricycle collision at Cityland Avenue intersection. Two vehicles involved. Minor injuries.", Location: domain.Location{Lat: 14.8820, Lng: 120.9900}, Status: domain.StatusInvestigating, Reporter: "Juan Dela Cruz", ReportedAt: at(2024, time.December, 14, 9, 15)},
		{ID: "3", Type: "Vandalism", Description: "Graffiti on public wall near the basketball court in Purok 5.", Location: domain.Location{Lat: 14.8560, Lng: 120.9760}, Status: domain.StatusResolved, Reporter: "Anonymous", ReportedAt: at(2024, time.December, 13, 22, 0)},
		{ID: "4", Type: "Suspicious Activity", Description: "Unknown individuals loitering near the elementary school during late hours.", Location: domain.Location{Lat: 14.8720, Lng: 121.0000}, Status: domain.StatusPending, Reporter: "Maria Santos", ReportedAt: at(2024, time.December, 12, 23, 45)},
		{ID: "5", Type: "Noise Disturbance", Description: "Loud videoke noise past midnight in residential area near Puntong Bato Road.", Location: domain.Location{Lat: 14.8520, Lng: 120.9980}, Status: domain.StatusResolved, Reporter: "Pedro Reyes", ReportedAt: at(2024, time.December, 11, 1, 30)},
		{ID: "6", Type: "Drug Related", Description: "Suspected drug activity near vacant lot along the eastern boundary.", Location: domain.Location{Lat: 14.8700, Lng: 121.0120}, Status: domain.StatusInvestigating, Reporter: "Anonymous", ReportedAt: at(2024, time.December, 10, 20, 15)},
	}
}

// SeedAlerts are the sample community alerts used in development mode.
func SeedAlerts() []domain.Alert {
	return []domain.Alert{
		{ID: "1", Title: "Heavy Rainfall Warning", Message: "Orange rainfall warning raised in Bulacan. Expect flooding in low-lying areas.", Type: domain.AlertWarning, Source: "PAGASA", IssuedAt: at(2024, time.December, 22, 8, 0)},
		{ID: "2", Title: "Medical Mission", Message: "Free medical checkup and dental services at the Barangay Hall tomorrow starting 8am.", Type: domain.AlertInfo, Source: "Brgy. Health Center", IssuedAt: at(2024, time.December, 21, 14, 0)},
		{ID: "3", Title: "Fire Incident", Message: "Fire reported at Purok 2. Fire trucks are on the way. Please avoid the area.", Type: domain.AlertEmergency, Source: "BFP Santa Maria", IssuedAt: at(2024, time.December, 20, 21, 30)},
	}
}
