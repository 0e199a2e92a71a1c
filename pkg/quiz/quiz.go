// Package quiz holds the study-mode state machine. Quiz state is ephemeral:
// it lives in an in-memory session cache and is never written to the store.
package quiz

import (
	"errors"
	"fmt"
	"time"
)

type Phase string

const (
	PhaseSetup       Phase = "setup"
	PhaseQuestioning Phase = "questioning"
	PhaseFeedback    Phase = "feedback"
	PhaseClarifying  Phase = "clarifying"
	PhaseSummary     Phase = "summary"
)

var ErrInvalidTransition = errors.New("quiz: invalid phase transition")

type Question struct {
	Prompt    string
	Reference string // model answer used for grading
}

type Result struct {
	Question string
	Given    string
	Feedback string
	Correct  bool
}

// State is one quiz attempt. Transitions:
//
//	setup -> questioning            (Begin)
//	questioning -> feedback         (SubmitAnswer)
//	feedback <-> clarifying         (Clarify / EndClarification)
//	feedback -> questioning         (Advance, more questions left)
//	feedback -> summary             (Advance, questions exhausted)
type State struct {
	ID        string
	BoardID   string
	Phase     Phase
	Questions []Question
	Current   int
	Results   []Result
	CreatedAt time.Time
}

func NewState(id, boardID string) *State {
	return &State{
		ID:        id,
		BoardID:   boardID,
		Phase:     PhaseSetup,
		CreatedAt: time.Now(),
	}
}

func (s *State) Begin(questions []Question) error {
	if s.Phase != PhaseSetup {
		return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, s.Phase)
	}
	if len(questions) == 0 {
		return errors.New("quiz: no questions")
	}
	s.Questions = questions
	s.Current = 0
	s.Phase = PhaseQuestioning
	return nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *State) CurrentQuestion() (Question, bool) {
	if s.Current >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Current], true
}

func (s *State) SubmitAnswer(given, feedback string, correct bool) error {
	if s.Phase != PhaseQuestioning {
		return fmt.Errorf("%w: answer from %s", ErrInvalidTransition, s.Phase)
	}
	question, ok := s.CurrentQuestion()
	if !ok {
		return errors.New("quiz: no current question")
	}
	s.Results = append(s.Results, Result{
		Question: question.Prompt,
		Given:    given,
		Feedback: feedback,
		Correct:  correct,
	})
	s.Phase = PhaseFeedback
	return nil
}

func (s *State) Clarify() error {
	if s.Phase != PhaseFeedback {
		return fmt.Errorf("%w: clarify from %s", ErrInvalidTransition, s.Phase)
	}
	s.Phase = PhaseClarifying
	return nil
}

func (s *State) EndClarification() error {
	if s.Phase != PhaseClarifying {
		return fmt.Errorf("%w: end clarification from %s", ErrInvalidTransition, s.Phase)
	}
	s.Phase = PhaseFeedback
	return nil
}

// Advance moves past the answered question, into summary once the last one is
// done.
func (s *State) Advance() error {
	if s.Phase != PhaseFeedback {
		return fmt.Errorf("%w: advance from %s", ErrInvalidTransition, s.Phase)
	}
	s.Current++
	if s.Current >= len(s.Questions) {
		s.Phase = PhaseSummary
	} else {
		s.Phase = PhaseQuestioning
	}
	return nil
}

// Score reports correct answers out of total; ok is false until the summary
// phase is reached.
func (s *State) Score() (correct, total int, ok bool) {
	if s.Phase != PhaseSummary {
		return 0, 0, false
	}
	for _, r := range s.Results {
		if r.Correct {
			correct++
		}
	}
	return correct, len(s.Results), true
}
