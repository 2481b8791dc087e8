package comparison

import "agora/internal/logging"

// State is a step of the submission state machine.
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateSuccess   State = "success"
	StateFailure   State = "failure"
	StateEnriching State = "enriching"
	StateCached    State = "cached"
	StateNavigated State = "navigated"
)

// Transition describes one state change. Err is set on the transition into
// StateFailure.
type Transition struct {
	From  State
	To    State
	RunID string
	Err   error
}

func (s *Service) transition(runID string, to State, err error) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()

	s.logger.Debug("comparison state changed",
		logging.String("from", string(from)),
		logging.String("to", string(to)),
		logging.String(logging.FieldRunID, runID),
	)
	if s.onTransition != nil {
		s.onTransition(Transition{From: from, To: to, RunID: runID, Err: err})
	}
}

// State reports the current state of the service.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
