package storage

import (
	"encoding/json"
	"fmt"

	"github.com/portfolio/backend/internal/model"
)

// emptyDocument is the serialised form of a log with no submissions.
var emptyDocument = []byte("{\n  \"messages\": []\n}")

// EncodeDocument serialises subs as a {"messages": [...]} document.
func EncodeDocument(subs []*model.Submission) ([]byte, error) {
	if subs == nil {
		subs = []*model.Submission{}
	}
	data, err := json.MarshalIndent(model.SubmissionLog{Messages: subs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a {"messages": [...]} document. A document without a
// messages array decodes to an empty sequence.
func DecodeDocument(data []byte) ([]*model.Submission, error) {
	var doc model.SubmissionLog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: decode: %w", err)
	}
	if doc.Messages == nil {
		return []*model.Submission{}, nil
	}
	for i, m := range doc.Messages {
		if m == nil {
			return nil, fmt.Errorf("storage: decode: null entry at index %d", i)
		}
	}
	return doc.Messages, nil
}
