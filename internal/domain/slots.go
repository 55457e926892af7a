package domain

import (
	"fmt"
	"time"
)

// SlotTimeLayout is the wall-clock layout used for slot, event, and break times.
const SlotTimeLayout = "15:04"

// ParseSlotTime parses an "HH:MM" string.
func ParseSlotTime(s string) (time.Time, error) {
	t, err := time.Parse(SlotTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return t, nil
}

// GenerateSlots produces the ordered slot start times from start (inclusive)
// to end (exclusive), stepping by slotDuration minutes. A slot whose start
// falls within [break.Start, break.End) for any break is excluded; a slot
// starting exactly at a break's end is included. The function is pure: the
// same inputs always yield the same sequence.
func GenerateSlots(startTime, endTime string, slotDuration int, breaks []BreakInterval) ([]string, error) {
	if slotDuration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", slotDuration)
	}
	start, err := ParseSlotTime(startTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseSlotTime(endTime)
	if err != nil {
		return nil, err
	}

	type span struct{ start, end time.Time }
	spans := make([]span, 0, len(breaks))
	for _, b := range breaks {
		bs, err := ParseSlotTime(b.Start)
		if err != nil {
			return nil, err
		}
		be, err := ParseSlotTime(b.End)
		if err != nil {
			return nil, err
		}
		spans = append(spans, span{start: bs, end: be})
	}

	step := time.Duration(slotDuration) * time.Minute
	slots := []string{}
	for cur := start; cur.Before(end); cur = cur.Add(step) {
		inBreak := false
		for _, sp := range spans {
			if !cur.Before(sp.start) && cur.Before(sp.end) {
				inBreak = true
				break
			}
		}
		if !inBreak {
			slots = append(slots, cur.Format(SlotTimeLayout))
		}
	}
	return slots, nil
}
