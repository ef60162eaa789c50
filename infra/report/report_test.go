package report

import (
	"time"

	"github.com/kilianp07/tgcsim/core/model"
	corereport "github.com/kilianp07/tgcsim/core/report"
)

func sampleSummary() corereport.Summary {
	return corereport.Summary{
		RunID:            "run-1",
		CreatedAt:        time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		Rule:             "EDF",
		Allocator:        "greedy",
		HorizonHours:     24,
		Arrivals:         3,
		Departed:         2,
		Balked:           1,
		MeanSatisfaction: 75,
		QueueMeanLength:  0.25,
		QueueMaxLength:   1,
		Vehicles: []corereport.VehicleStats{
			{ID: "ev1", State: "departed", StationID: "se1", Arrival: 0, Departure: 4, RequestedKWh: 40, DeliveredKWh: 40, Satisfaction: 100},
			{ID: "ev2", State: "departed", StationID: "se1", Arrival: 1, ChargeStart: 4, Departure: 6, RequestedKWh: 28, DeliveredKWh: 14, Satisfaction: 50},
			{ID: "ev3", State: "balked", Arrival: 2, RequestedKWh: 20},
		},
		Stations: []corereport.StationStats{
			{ID: "se1", Connected: true, RatedKW: 11, EnergyKWh: 54, ActiveHours: 6, Utilization: 81.8, Sessions: 2, MeanSessionHours: 3},
		},
		Grid: corereport.GridStats{CeilingKW: 11, EnergyKWh: 54, ActiveHours: 6, Utilization: 81.8, MissedKWh: 12, UnmetKWh: 14, CostEUR: 18.9},
		Series: []corereport.Series{
			{Kind: "station", ID: "se1", Samples: []model.Sample{{At: 0, PowerKW: 10}, {At: 4, PowerKW: 7}, {At: 6, PowerKW: 0}}},
			{Kind: "grid", ID: "grid", Samples: []model.Sample{{At: 0, PowerKW: 10}, {At: 6, PowerKW: 0}}},
		},
	}
}
