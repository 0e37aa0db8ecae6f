package models

import "time"

// Liveness is the minimal liveness response for the monitor process itself.
type Liveness struct {
	Status  string    `json:"status"`
	Time    time.Time `json:"time"`
	Version string    `json:"version"`
}
