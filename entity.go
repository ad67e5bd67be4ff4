package projects

// Modifiable is anything whose unsaved state a Document can follow.
type Modifiable interface {
	Modified() bool
	OnModifiedChanged(h ModifiedChangedHandler) Unsubscribe
}

// Saver is implemented by tracked objects that want to be told when the
// document containing them has been saved.
type Saver interface {
	MarkSaved()
}

// Entity combines a PropertyStore with a Tracker: every effective property
// change marks the entity modified. Embed it in model types:
//
//	type Person struct {
//		projects.Entity
//	}
//
//	func (p *Person) SetName(name string) { p.SetProperty("Name", name) }
//
// Properties is exported so codecs serialize it; mutate it through
// SetProperty so the modified flag follows.
type Entity struct {
	Properties PropertyStore `xml:"properties" json:"properties" yaml:"properties" cbor:"properties"`
	tracker    Tracker
}

// Modified reports whether the entity has unsaved changes.
func (e *Entity) Modified() bool {
	return e.tracker.Modified()
}

// MarkModified flags the entity as changed.
func (e *Entity) MarkModified() {
	e.tracker.SetModified(true)
}

// MarkSaved clears the modified flag.
func (e *Entity) MarkSaved() {
	e.tracker.SetModified(false)
}

// SetModified sets the modified flag directly.
func (e *Entity) SetModified(modified bool) {
	e.tracker.SetModified(modified)
}

// SetProperty stores value under name and marks the entity modified if the
// value changed. It reports whether it did.
func (e *Entity) SetProperty(name string, value any) bool {
	if !e.Properties.Set(name, value) {
		return false
	}
	e.tracker.SetModified(true)
	return true
}

// NotifyPropertyChanged raises a change notification for a derived property
// and marks the entity modified.
func (e *Entity) NotifyPropertyChanged(name string) {
	e.Properties.NotifyPropertyChanged(name)
	e.tracker.SetModified(true)
}

// OnModifiedChanged registers h for modified flag transitions.
func (e *Entity) OnModifiedChanged(h ModifiedChangedHandler) Unsubscribe {
	return e.tracker.OnModifiedChanged(h)
}

// OnPropertyChanged registers h for property changes.
func (e *Entity) OnPropertyChanged(h PropertyChangedHandler) Unsubscribe {
	return e.Properties.OnPropertyChanged(h)
}

// SetSender sets the object handlers receive as the sender, usually the type
// that embeds the entity.
func (e *Entity) SetSender(sender any) {
	e.tracker.SetSender(sender)
	e.Properties.SetSender(sender)
}
