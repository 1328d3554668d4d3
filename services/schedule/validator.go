// Package schedule decides whether a batch of proposed availability ranges
// may be appended to a provider's schedule.
package schedule

import (
	"fmt"
	"time"

	"slotbook/models"
	"slotbook/utils"
)

var (
	ErrInvalidSchedule = utils.NewAppError("invalid_schedule", utils.KindInputValidation, "schedule rejected")
	// ErrScheduleOverlap accompanies ErrInvalidSchedule when a range collides with another.
	ErrScheduleOverlap = utils.NewAppError("schedule_overlap", utils.KindStateConflict, "schedule range overlaps another range")
)

// Rule names the check a range failed.
type Rule string

const (
	RuleMalformed        Rule = "malformed"
	RuleMisaligned       Rule = "misaligned"
	RuleTooShort         Rule = "too_short"
	RuleOverlapsExisting Rule = "overlaps_existing"
	RuleOverlapsBatch    Rule = "overlaps_batch"
)

// RangeError reports the first range of a batch that failed validation.
type RangeError struct {
	Index  int
	Rule   Rule
	Detail string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %d %s: %s", e.Index, e.Rule, e.Detail)
}

// Unwrap always includes ErrInvalidSchedule. Overlaps also carry
// ErrScheduleOverlap first so they classify as conflicts.
func (e *RangeError) Unwrap() []error {
	if e.Rule == RuleOverlapsExisting || e.Rule == RuleOverlapsBatch {
		return []error{ErrScheduleOverlap, ErrInvalidSchedule}
	}
	return []error{ErrInvalidSchedule}
}

// ParseTimestamp accepts RFC 3339 timestamps only; the UTC offset is mandatory.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

// ParseTimeRange converts a wire range into a typed one, keeping both offsets.
func ParseTimeRange(raw models.TimeRangeInput) (models.TimeRange, error) {
	start, err := ParseTimestamp(raw.Start)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("start %q: %w", raw.Start, err)
	}
	end, err := ParseTimestamp(raw.End)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("end %q: %w", raw.End, err)
	}
	return models.TimeRange{Start: start, End: end}, nil
}

// Validate checks every proposed range against the rules and the existing
// schedule. The whole batch is rejected on the first failure; on success the
// parsed ranges are returned in submission order.
func Validate(existing []models.TimeRange, proposed []models.TimeRangeInput, length time.Duration) ([]models.TimeRange, error) {
	step := int(length / time.Minute)
	if step <= 0 {
		return nil, fmt.Errorf("%w: appointment length %v is below one minute", ErrInvalidSchedule, length)
	}

	parsed := make([]models.TimeRange, 0, len(proposed))
	for i, raw := range proposed {
		r, err := ParseTimeRange(raw)
		if err != nil {
			return nil, &RangeError{Index: i, Rule: RuleMalformed, Detail: err.Error()}
		}

		if r.Start.Minute()%step != 0 || r.End.Minute()%step != 0 {
			return nil, &RangeError{
				Index:  i,
				Rule:   RuleMisaligned,
				Detail: fmt.Sprintf("minutes must be multiples of %d", step),
			}
		}

		if r.End.Before(r.Start.Add(length)) {
			return nil, &RangeError{
				Index:  i,
				Rule:   RuleTooShort,
				Detail: fmt.Sprintf("range must last at least %v", length),
			}
		}

		for _, e := range existing {
			if r.Overlaps(e) {
				return nil, &RangeError{
					Index:  i,
					Rule:   RuleOverlapsExisting,
					Detail: fmt.Sprintf("overlaps %s - %s", e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339)),
				}
			}
		}

		for j, prev := range parsed {
			if r.Overlaps(prev) {
				return nil, &RangeError{
					Index:  i,
					Rule:   RuleOverlapsBatch,
					Detail: fmt.Sprintf("overlaps range %d of the same submission", j),
				}
			}
		}

		parsed = append(parsed, r)
	}
	return parsed, nil
}
