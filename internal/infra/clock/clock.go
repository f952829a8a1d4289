package clock

import "time"

// System reads the wall clock in Location, or time.Local when Location is nil.
type System struct {
	Location *time.Location
}

func (c System) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
