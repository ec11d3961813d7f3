// Package tasks defines the queue contract shared by the API (producer)
// and the certificate worker (consumer).
package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants keep producer and consumer in agreement.
const (
	TypeCertificateBatch = "certificates:batch"
)

// CertificateBatchPayload carries the minimum needed to run a batch.
type CertificateBatchPayload struct {
	DesignID      uint   `json:"design_id"`
	EventID       string `json:"event_id"`
	CheckedInOnly bool   `json:"checked_in_only"`
	TaskID        string `json:"task_id"`
}

// NewCertificateBatchTask builds a queue task for one certificate batch.
func NewCertificateBatchTask(p CertificateBatchPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCertificateBatch, payload), nil
}
