package s4_reconcile

import "github.com/wonny/fundscore/internal/contracts"

// EventIndex maps quarter labels to raw announcement dates
type EventIndex struct {
	release map[contracts.QuarterLabel]string
	call    map[contracts.QuarterLabel]string
}

// BuildEventIndex indexes release and call events separately.
// The first event per label wins; events without a raw date are skipped.
func BuildEventIndex(events []contracts.CompanyEvent) *EventIndex {
	idx := &EventIndex{
		release: make(map[contracts.QuarterLabel]string),
		call:    make(map[contracts.QuarterLabel]string),
	}

	for _, ev := range events {
		if ev.DateTimeRaw == nil || *ev.DateTimeRaw == "" {
			continue
		}

		label, kind, ok := InferQuarterFromTitle(ev.Title)
		if !ok {
			continue
		}

		target := idx.release
		if kind == KindCall {
			target = idx.call
		}
		if _, exists := target[label]; !exists {
			target[label] = *ev.DateTimeRaw
		}
	}

	return idx
}

// Lookup prefers the earnings release date over the earnings call date
func (idx *EventIndex) Lookup(label contracts.QuarterLabel) (string, bool) {
	if raw, ok := idx.release[label]; ok {
		return raw, true
	}
	raw, ok := idx.call[label]
	return raw, ok
}

// Len returns the number of indexed labels (release + call)
func (idx *EventIndex) Len() int {
	return len(idx.release) + len(idx.call)
}

// FromGrowth lifts growth records into dated records with no date or prices
func FromGrowth(records []contracts.GrowthRecord) []contracts.DatedPricedRecord {
	out := make([]contracts.DatedPricedRecord, len(records))
	for i, rec := range records {
		out[i] = contracts.DatedPricedRecord{GrowthRecord: rec}
	}
	return out
}

// AttachDates copies the matched raw date onto each record. Records without
// a match keep whatever DateTimeRaw they already carry (usually nil).
func AttachDates(records []contracts.DatedPricedRecord, idx *EventIndex) []contracts.DatedPricedRecord {
	out := make([]contracts.DatedPricedRecord, len(records))
	copy(out, records)

	for i := range out {
		if raw, ok := idx.Lookup(out[i].Quarter); ok {
			out[i].DateTimeRaw = contracts.String(raw)
		}
	}

	return out
}
