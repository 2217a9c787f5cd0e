package externalapi

// Event is one entry of a deploy's event log. The set of event kinds
// is closed: Produce, Consume and Comm are the only implementations.
type Event interface {
	isEvent()
	// CloneEvent returns a deep copy of the event
	CloneEvent() Event
	// EqualEvent returns whether the event equals to other
	EqualEvent(other Event) bool
}

// Produce records data being sent on a channel
type Produce struct {
	Channel    *DomainHash
	DataHash   *DomainHash
	Persistent bool
}

// Consume records a continuation waiting on one or more channels
type Consume struct {
	Channels    []*DomainHash
	PatternHash *DomainHash
	Persistent  bool
}

// Comm records a completed match between a consume and the produces it
// received, one per consumed channel
type Comm struct {
	Consume  *Consume
	Produces []*Produce
}

func (*Produce) isEvent() {}
func (*Consume) isEvent() {}
func (*Comm) isEvent()    {}

// CloneEvent returns a clone of the Produce
func (p *Produce) CloneEvent() Event {
	return p.Clone()
}

// Clone returns a clone of the Produce
func (p *Produce) Clone() *Produce {
	return &Produce{Channel: p.Channel, DataHash: p.DataHash, Persistent: p.Persistent}
}

// EqualEvent returns whether p equals to other
func (p *Produce) EqualEvent(other Event) bool {
	otherProduce, ok := other.(*Produce)
	if !ok {
		return false
	}
	return p.Equal(otherProduce)
}

// Equal returns whether p equals to other
func (p *Produce) Equal(other *Produce) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Channel.Equal(other.Channel) && p.DataHash.Equal(other.DataHash) &&
		p.Persistent == other.Persistent
}

// CloneEvent returns a clone of the Consume
func (c *Consume) CloneEvent() Event {
	return c.Clone()
}

// Clone returns a clone of the Consume
func (c *Consume) Clone() *Consume {
	return &Consume{
		Channels:    CloneHashes(c.Channels),
		PatternHash: c.PatternHash,
		Persistent:  c.Persistent,
	}
}

// EqualEvent returns whether c equals to other
func (c *Consume) EqualEvent(other Event) bool {
	otherConsume, ok := other.(*Consume)
	if !ok {
		return false
	}
	return c.Equal(otherConsume)
}

// Equal returns whether c equals to other
func (c *Consume) Equal(other *Consume) bool {
	if c == nil || other == nil {
		return c == other
	}
	return HashesEqual(c.Channels, other.Channels) && c.PatternHash.Equal(other.PatternHash) &&
		c.Persistent == other.Persistent
}

// CloneEvent returns a clone of the Comm
func (c *Comm) CloneEvent() Event {
	producesClone := make([]*Produce, len(c.Produces))
	for i, produce := range c.Produces {
		producesClone[i] = produce.Clone()
	}
	return &Comm{Consume: c.Consume.Clone(), Produces: producesClone}
}

// EqualEvent returns whether c equals to other
func (c *Comm) EqualEvent(other Event) bool {
	otherComm, ok := other.(*Comm)
	if !ok {
		return false
	}
	if !c.Consume.Equal(otherComm.Consume) || len(c.Produces) != len(otherComm.Produces) {
		return false
	}
	for i, produce := range c.Produces {
		if !produce.Equal(otherComm.Produces[i]) {
			return false
		}
	}
	return true
}

// EventLog is the ordered record of the events a single deploy's
// execution performed
type EventLog []Event

// Clone returns a deep copy of the event log
func (log EventLog) Clone() EventLog {
	clone := make(EventLog, len(log))
	for i, event := range log {
		clone[i] = event.CloneEvent()
	}
	return clone
}

// Equal returns whether log equals to other
func (log EventLog) Equal(other EventLog) bool {
	if len(log) != len(other) {
		return false
	}
	for i, event := range log {
		if !event.EqualEvent(other[i]) {
			return false
		}
	}
	return true
}

// CloneEventLogs returns a deep copy of a list of event logs
func CloneEventLogs(logs []EventLog) []EventLog {
	clone := make([]EventLog, len(logs))
	for i, log := range logs {
		clone[i] = log.Clone()
	}
	return clone
}
