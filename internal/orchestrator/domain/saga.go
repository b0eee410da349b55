package domain

import "time"

type SagaState string

const (
	StateRunning   SagaState = "running"
	StateCompleted SagaState = "completed"
	StatePartial   SagaState = "partial"
)

type StepName string

const (
	StepFetchOrder    StepName = "fetch_order"
	StepDecreaseStock StepName = "decrease_stock"
	StepNotify        StepName = "notify"
)

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

type Step struct {
	Name   StepName
	Status StepStatus
	Err    string
}

// Saga records what one payment-completion run did. Nothing is compensated,
// so a failed step only downgrades the final state to partial.
type Saga struct {
	PaymentID string
	OrderID   string
	State     SagaState
	Steps     []Step
	StartedAt time.Time
	EndedAt   time.Time
}

func NewSaga(paymentID, orderID string, now time.Time) *Saga {
	return &Saga{PaymentID: paymentID, OrderID: orderID, State: StateRunning, StartedAt: now}
}

func (s *Saga) Complete(name StepName) {
	s.Steps = append(s.Steps, Step{Name: name, Status: StepCompleted})
}

func (s *Saga) Fail(name StepName, err error) {
	s.Steps = append(s.Steps, Step{Name: name, Status: StepFailed, Err: err.Error()})
}

func (s *Saga) Skip(name StepName, reason string) {
	s.Steps = append(s.Steps, Step{Name: name, Status: StepSkipped, Err: reason})
}

// Finish settles the final state from the recorded steps.
func (s *Saga) Finish(now time.Time) {
	s.EndedAt = now
	s.State = StateCompleted
	for _, st := range s.Steps {
		if st.Status == StepFailed {
			s.State = StatePartial
			return
		}
	}
}

// StepStatuses flattens the steps into name=status pairs for logging.
func (s *Saga) StepStatuses() map[string]string {
	out := make(map[string]string, len(s.Steps))
	for _, st := range s.Steps {
		out[string(st.Name)] = string(st.Status)
	}
	return out
}
