package domain

import "time"

// Entry is one line of the session transcript.
type Entry struct {
	Speaker   string    `json:"speaker"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the ordered record of everything said in a session.
type Transcript []Entry

// Clone returns an independent copy.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}
