package domain

import "time"

// ConflictMessage is the caller-visible rejection reason for a scheduling
// conflict. Controllers surface it verbatim so the caller can pick another
// date instead of seeing a generic failure.
const ConflictMessage = "Speaker is already booked for this time."

// InvalidCandidateMessage is the rejection reason for a candidate missing a
// required reference.
const InvalidCandidateMessage = "Assignment is missing a required speaker or session reference."

// DecisionCode classifies a per-candidate validation outcome.
type DecisionCode string

const (
	DecisionOK       DecisionCode = "ok"
	DecisionConflict DecisionCode = "conflict"
	DecisionInvalid  DecisionCode = "invalid"
)

// Decision is the validation outcome for one candidate. A candidate
// conflicting with multiple others is still rejected once, with one message.
// swagger:model Decision
type Decision struct {
	Code    DecisionCode `json:"code"`
	Message string       `json:"message,omitempty"`
}

// AssignmentCandidate is a proposed assignment with its session interval
// already resolved, ready for conflict checking. ID is empty for inserts and
// carries the persisted id for updates, so a candidate is never compared
// against its own prior committed row.
type AssignmentCandidate struct {
	ID        string
	SpeakerID string
	SessionID string
	Date      string
	StartTime time.Time
	EndTime   time.Time
}

// Key returns the grouping key under which this candidate can conflict.
func (c *AssignmentCandidate) Key() BookingKey {
	return BookingKey{SpeakerID: c.SpeakerID, Date: c.Date}
}

// ValidateAssignments judges every candidate in one batch against a single
// snapshot of committed state and against the candidate's siblings in the
// same batch. It is a pure function: no reads, no writes, no retained state.
//
// committed must hold, for every (speaker, date) key the batch touches, all
// committed assignments under that key, loaded once by the caller before
// validation so the whole batch sees one consistent snapshot.
//
// Rules, in order:
//   - a candidate missing its speaker or session reference is invalid and is
//     excluded from every comparison set;
//   - a candidate overlapping any committed assignment under its key (other
//     than its own prior row, matched by id) is rejected;
//   - a candidate overlapping any other valid sibling under its key (other
//     than the same logical assignment, matched by id) is rejected. Sibling
//     checks are all-pairwise: N mutually overlapping candidates are all
//     rejected, never one admitted as a winner.
//
// The returned slice is positional: decisions[i] answers candidates[i].
func ValidateAssignments(candidates []*AssignmentCandidate, committed map[BookingKey][]*Assignment) []Decision {
	decisions := make([]Decision, len(candidates))

	valid := make([]bool, len(candidates))
	for i, c := range candidates {
		if c.SpeakerID == "" || c.SessionID == "" || c.Date == "" {
			decisions[i] = Decision{Code: DecisionInvalid, Message: InvalidCandidateMessage}
			continue
		}
		valid[i] = true
	}

	// Index valid candidates by key for the sibling pass.
	byKey := make(map[BookingKey][]int)
	for i, c := range candidates {
		if valid[i] {
			byKey[c.Key()] = append(byKey[c.Key()], i)
		}
	}

	for i, c := range candidates {
		if !valid[i] {
			continue
		}

		conflict := false
		for _, existing := range committed[c.Key()] {
			if c.ID != "" && existing.ID == c.ID {
				continue // own prior row on update
			}
			if Overlaps(c.StartTime, c.EndTime, existing.StartTime, existing.EndTime) {
				conflict = true
				break
			}
		}
		if !conflict {
			for _, j := range byKey[c.Key()] {
				if j == i {
					continue
				}
				sibling := candidates[j]
				if c.ID != "" && sibling.ID == c.ID {
					continue // same logical assignment appearing twice
				}
				if Overlaps(c.StartTime, c.EndTime, sibling.StartTime, sibling.EndTime) {
					conflict = true
					break
				}
			}
		}

		if conflict {
			decisions[i] = Decision{Code: DecisionConflict, Message: ConflictMessage}
		} else {
			decisions[i] = Decision{Code: DecisionOK}
		}
	}

	return decisions
}
