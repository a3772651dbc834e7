package mapping

import (
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/models"
)

// ToModelEntry converts a domain Entry to a model Entry
func ToModelEntry(d domain.Entry) models.Entry {
	return models.Entry{
		EntryID:     d.EntryID,
		HouseholdID: d.HouseholdID,
		OccurredAt:  d.OccurredAt,
		EntryType:   models.EntryType(d.EntryType),
		CategoryID:  d.CategoryID,
		Memo:        d.Memo,
		Source:      models.EntrySource(d.Source),
		IsLocked:    d.IsLocked,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model Entry to a domain Entry
func ToDomainEntry(m models.Entry) domain.Entry {
	return domain.Entry{
		EntryID:     m.EntryID,
		HouseholdID: m.HouseholdID,
		OccurredAt:  m.OccurredAt,
		EntryType:   domain.EntryType(m.EntryType),
		CategoryID:  m.CategoryID,
		Memo:        m.Memo,
		Source:      domain.EntrySource(m.Source),
		IsLocked:    m.IsLocked,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLine converts a domain Line to a model Line
func ToModelLine(d domain.Line) models.Line {
	return models.Line{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		AccountID:      d.AccountID,
		Amount:         d.Amount,
		Memo:           d.Memo,
		AuditFields:    ToModelAuditFields(d.AuditFields),
		RunningBalance: d.RunningBalance,
	}
}

// ToDomainLine converts a model Line to a domain Line
func ToDomainLine(m models.Line) domain.Line {
	return domain.Line{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		AccountID:      m.AccountID,
		Amount:         m.Amount,
		Memo:           m.Memo,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
		RunningBalance: m.RunningBalance,
	}
}

// ToDomainLineSlice converts a slice of model Lines to a slice of domain Lines
func ToDomainLineSlice(ms []models.Line) []domain.Line {
	ds := make([]domain.Line, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLine(m)
	}
	return ds
}
