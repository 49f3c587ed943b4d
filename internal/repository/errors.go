package repository

import "errors"

// ErrStatusFinal is returned when a status update targets an entry whose
// status is already terminal, or asks for a non-terminal status.
var ErrStatusFinal = errors.New("status already final")
