package availability

import "github.com/rs/zerolog"

// Engine bundles the availability components over one Source. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	Resolver  *WorkingHoursResolver
	Index     *AppointmentIndex
	Validator *Validator
	Slots     *SlotEnumerator
	Calendar  *CalendarAggregator
}

func NewEngine(src Source, policy Policy, logger zerolog.Logger) *Engine {
	resolver := NewWorkingHoursResolver(src, logger)
	index := NewAppointmentIndex(src)

	return &Engine{
		Resolver:  resolver,
		Index:     index,
		Validator: NewValidator(src, resolver, index, policy),
		Slots:     NewSlotEnumerator(src, resolver, index, policy),
		Calendar:  NewCalendarAggregator(src, src, resolver, index, policy),
	}
}
