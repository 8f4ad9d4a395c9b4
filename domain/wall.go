package domain

// Wall is a community message board the user can join and post to.
type Wall struct {
	ID               string
	Name             string
	Description      string
	Category         string
	Participants     int
	IsMember         bool
	IsAdmin          bool
	RequiresApproval bool
}

// ApplyJoin marks the wall joined and bumps the participant count by one.
func (w *Wall) ApplyJoin() {
	if w.IsMember {
		return
	}
	w.IsMember = true
	w.Participants++
}

// ApplyLeave marks the wall left and drops the participant count by one,
// never below zero.
func (w *Wall) ApplyLeave() {
	if !w.IsMember {
		return
	}
	w.IsMember = false
	if w.Participants > 0 {
		w.Participants--
	}
}
