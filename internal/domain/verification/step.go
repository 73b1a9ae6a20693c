package verification

// Step identifies the terminal state of one verification attempt. Steps are
// declared from cheapest success to total failure; ranking weights must be
// non-decreasing along this order.
type Step int

const (
	StepFirstSMS Step = iota
	StepSecondSMS
	StepFirstVoice
	StepSecondVoice
	StepUnreachable
)

// StepCount is the number of terminal steps an attempt can reach.
const StepCount = 5

func (s Step) String() string {
	switch s {
	case StepFirstSMS:
		return "first_sms"
	case StepSecondSMS:
		return "second_sms"
	case StepFirstVoice:
		return "first_voice_call"
	case StepSecondVoice:
		return "second_voice_call"
	case StepUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the attempt completed verification. Every step
// except Unreachable means one of the four challenges passed.
func (s Step) Succeeded() bool {
	return s.IsValid() && s != StepUnreachable
}

// IsValid reports whether s is one of the declared steps.
func (s Step) IsValid() bool {
	return s >= StepFirstSMS && s <= StepUnreachable
}

// Steps returns all terminal steps in declaration order.
func Steps() [StepCount]Step {
	return [StepCount]Step{StepFirstSMS, StepSecondSMS, StepFirstVoice, StepSecondVoice, StepUnreachable}
}
