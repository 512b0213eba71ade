package models

// Admission rules, applied to an event row that the caller holds locked.

// CheckPublished rejects registrations to drafts and cancelled events.
func CheckPublished(ev Event) error {
	if ev.Status != EventPublished {
		return EventNotPublished
	}
	return nil
}

// CheckCapacity fails when the active registrations already fill the event.
func CheckCapacity(ev Event, active int64) error {
	if active >= int64(ev.MaxParticipants) {
		return EventFull
	}
	return nil
}

// CheckReactivation guards a cancelled registration that is moved back to an
// active status; it must fit the event exactly like a new one.
func CheckReactivation(ev Event, from, to RegistrationStatus, active int64) error {
	if from.Active() || !to.Active() {
		return nil
	}
	if err := CheckPublished(ev); err != nil {
		return err
	}
	return CheckCapacity(ev, active)
}
