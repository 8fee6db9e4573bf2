package model

import "time"

// HistoryReport is the location audit table of one machine.
type HistoryReport struct {
	Machine     Machine
	Records     []LocationRecord
	GeneratedAt time.Time
}

// ShiftReport lists every shift of one machine with the finished-shift depth total.
type ShiftReport struct {
	Machine            Machine
	Shifts             []Shift
	WorkerNames        map[int64]string
	TotalDrillingDepth float64
	GeneratedAt        time.Time
}

// ShiftDocument is the printable end-of-shift sheet.
type ShiftDocument struct {
	Machine     Machine
	Shift       Shift
	Workers     []User
	Fuel        []FuelRecord
	GeneratedAt time.Time
}
