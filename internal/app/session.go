package service

// ViewState is where a topic's detail view currently is.
type ViewState string

const (
	// StateStepper is the two-step wizard (name, then attributes) that
	// precedes a topic's creation. CompleteWizard leaves it as the topic is
	// stored, so Session never reports it.
	StateStepper ViewState = "stepper"
	// StateAttributeWizard is the wizard reopened to edit attribute weights.
	StateAttributeWizard ViewState = "attribute_wizard"
	// StateComparison shows the ranked results and the subject form.
	StateComparison ViewState = "comparison"
)

// transitions lists the allowed view moves. No state is terminal.
var transitions = map[ViewState][]ViewState{
	StateStepper:         {StateAttributeWizard, StateComparison},
	StateAttributeWizard: {StateComparison},
	StateComparison:      {StateAttributeWizard},
}

// CanTransition reports whether the view may move from one state to another.
func CanTransition(from, to ViewState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the presentation-side state of one topic. Navigating it never
// changes stored data.
type Session struct {
	TopicID string    `json:"topic_id"`
	State   ViewState `json:"state"`
	// EditingSubjectID is the subject the form is currently editing, if any.
	EditingSubjectID string `json:"editing_subject_id,omitempty"`
}
