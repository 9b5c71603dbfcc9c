package model

import (
	"time"

	"aura-vcf-bot/internal/domain"

	"github.com/google/uuid"
)

// Operation names a bot flow. The values double as conversation modes.
type Operation string

const (
	OpTextToVCF      Operation = "text_to_vcf"
	OpCount          Operation = "count"
	OpAddContact     Operation = "add_contact"
	OpRenameContacts Operation = "rename_contacts"
	OpRenameFiles    Operation = "rename_files"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpTextToVCF, OpCount, OpAddContact, OpRenameContacts, OpRenameFiles:
		return true
	}
	return false
}

// UsageRecord is a metadata-only audit row; contact data is never stored.
type UsageRecord struct {
	ID        string
	ChatID    int64
	Operation Operation
	Files     int
	Contacts  int
	CreatedAt time.Time
}

func NewUsageRecord(chatID int64, op Operation, files, contacts int) (*UsageRecord, error) {
	if chatID == 0 || !op.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	if files < 0 || contacts < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &UsageRecord{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Operation: op,
		Files:     files,
		Contacts:  contacts,
		CreatedAt: time.Now(),
	}, nil
}

// UsageSummary aggregates usage records since a point in time.
type UsageSummary struct {
	Since       time.Time
	Users       int
	Operations  map[Operation]int
	FilesOut    int
	ContactsOut int
}
