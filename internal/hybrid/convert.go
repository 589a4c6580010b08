package hybrid

import (
	"time"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/remote"
)

// recordFromRow maps a remote row to the canonical record. The record id is
// the row's holiday_id when present, else its primary key.
func recordFromRow(row *remote.Row) content.Record {
	rec := content.Record{
		ID:         row.HolidayID,
		Holiday:    row.HolidayName,
		Country:    row.CountryName,
		Locale:     row.Locale,
		Body:       row.Description,
		Confidence: row.Confidence,
		Manual:     row.IsManual,
	}
	if rec.ID == "" {
		rec.ID = row.ID
	}
	if row.GeneratedAt != nil {
		rec.GeneratedAt = row.GeneratedAt.UTC()
	}
	if row.LastUsed != nil {
		rec.LastUsedAt = row.LastUsed.UTC()
	}
	return rec
}

// rowFromRecord maps a record to a row ready for insert.
func rowFromRecord(rec *content.Record) remote.Row {
	return remote.Row{
		HolidayID:   rec.ID,
		HolidayName: rec.Holiday,
		CountryName: rec.Country,
		Locale:      rec.Locale,
		Description: rec.Body,
		Confidence:  rec.Confidence,
		IsManual:    rec.IsManual(),
		GeneratedAt: timePtr(rec.GeneratedAt),
		LastUsed:    timePtr(rec.LastUsedAt),
	}
}

// fieldsFromRecord is the overwrite applied to an existing row.
func fieldsFromRecord(rec *content.Record) remote.Fields {
	fields := remote.Fields{
		"description": rec.Body,
		"confidence":  rec.Confidence,
		"is_manual":   rec.IsManual(),
	}
	if rec.ID != "" {
		fields["holiday_id"] = rec.ID
	}
	if !rec.GeneratedAt.IsZero() {
		fields["generated_at"] = rec.GeneratedAt.UTC()
	}
	if !rec.LastUsedAt.IsZero() {
		fields["last_used"] = rec.LastUsedAt.UTC()
	}
	return fields
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
