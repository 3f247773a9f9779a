package ledger

import "time"

// Session is one continuous stay of one vehicle, from entry to optional exit.
// A nil ExitTime means the vehicle is currently inside.
type Session struct {
	ID        int64      `json:"id"`
	PlateKey  string     `json:"plate_key"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`
	ImagePath *string    `json:"image_path,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Open reports whether the session has no recorded exit.
func (s Session) Open() bool {
	return s.ExitTime == nil
}

// Duration returns the length of the stay. Open sessions are measured
// against now.
func (s Session) Duration(now time.Time) time.Duration {
	if s.ExitTime != nil {
		return s.ExitTime.Sub(s.EntryTime)
	}
	return now.Sub(s.EntryTime)
}
