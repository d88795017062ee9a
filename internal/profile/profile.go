// Package profile models the account record and the edit session that
// tracks it against the remote service.
package profile

import (
	"strings"

	"github.com/maxxenergy/maxxacct/internal/validate"
)

// Record is one account profile. ID is assigned by the service and never
// changes once created.
type Record struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// Trimmed returns a copy with surrounding whitespace removed from the
// name and email fields.
func (r Record) Trimmed() Record {
	return Record{
		ID:        r.ID,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Email:     strings.TrimSpace(r.Email),
	}
}

// Mode is the edit session's display mode.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

// Session tracks a profile through view, edit and save. committed holds
// the last server-confirmed state; working holds the user's in-progress
// edits. Outside an active edit the two never diverge.
//
// Saves carry a sequence number so that when overlapping saves are
// issued, each response can still be applied independently. The last
// response wins for the committed slot, and pending only clears when the
// most recently issued save resolves.
type Session struct {
	committed Record
	working   Record
	mode      Mode
	errors    validate.Errors
	pending   bool
	seq       int
}

// NewSession starts a session in Viewing mode over rec.
func NewSession(rec Record) *Session {
	return &Session{committed: rec, working: rec}
}

func (s *Session) Mode() Mode              { return s.mode }
func (s *Session) Committed() Record       { return s.committed }
func (s *Session) Working() Record         { return s.working }
func (s *Session) Errors() validate.Errors { return s.errors }
func (s *Session) Pending() bool           { return s.pending }

// StartEdit snapshots the committed record into the working copy and
// switches to Editing. Validation runs immediately so stale server data
// surfaces errors before the first keystroke.
func (s *Session) StartEdit() {
	if s.mode == Editing {
		return
	}
	s.working = s.committed
	s.mode = Editing
	s.errors = s.check()
}

// SetField updates one working field and recomputes validation. Field
// keys are the validate.Field* constants. Outside Editing it is a no-op.
func (s *Session) SetField(field, value string) {
	if s.mode != Editing {
		return
	}

	switch field {
	case validate.FieldFirstName:
		s.working.FirstName = value
	case validate.FieldLastName:
		s.working.LastName = value
	case validate.FieldEmail:
		s.working.Email = value
	default:
		return
	}

	s.errors = s.check()
}

// CancelEdit discards the working copy, reverts to committed and returns
// to Viewing. No server call is involved.
func (s *Session) CancelEdit() {
	if s.mode != Editing {
		return
	}
	s.working = s.committed
	s.errors = nil
	s.mode = Viewing
}

// BeginSave re-validates the working copy and, if clean, marks a save in
// flight and returns the trimmed payload to submit together with its
// sequence number. When validation fails it returns ok=false and the
// session stays in Editing with errors set; no request may be issued.
func (s *Session) BeginSave() (payload Record, seq int, ok bool) {
	if s.mode != Editing {
		return Record{}, 0, false
	}

	s.errors = s.check()
	if !s.errors.Valid() {
		return Record{}, 0, false
	}

	s.seq++
	s.pending = true
	return s.working.Trimmed(), s.seq, true
}

// ApplySaveOK records a successful save of payload: the committed slot
// takes the acknowledged payload and the session returns to Viewing.
// With overlapping saves the last response to arrive wins.
func (s *Session) ApplySaveOK(seq int, payload Record) {
	s.committed = payload
	s.working = payload
	s.errors = nil
	s.mode = Viewing
	if seq == s.seq {
		s.pending = false
	}
}

// ApplySaveErr records a failed save. The working copy is untouched and
// the session stays in Editing so the save can be retried.
func (s *Session) ApplySaveErr(seq int) {
	if seq == s.seq {
		s.pending = false
	}
}

func (s *Session) check() validate.Errors {
	return validate.Check(validate.Fields{
		FirstName:       s.working.FirstName,
		LastName:        s.working.LastName,
		Email:           s.working.Email,
		RequireLastName: true,
	})
}
