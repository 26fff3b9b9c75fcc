package engine

import "hacksim/internal/domain"

// AgentState is the mutable per-run view of one participant. One instance is
// created per profile at the start of each run and discarded after the run's
// results are frozen; nothing outlives the run.
type AgentState struct {
	Profile       domain.AgentProfile
	Idea          string
	OriginIdea    string
	Collaborators map[string]struct{}
	History       []string
	Commitment    float64
	Energy        float64
	ResearchDone  bool
}

const (
	commitmentFloor = 0.1
	commitmentCeil  = 1.0
	energyCeil      = 1.0
)

func newRunStates(profiles []domain.AgentProfile) []*AgentState {
	states := make([]*AgentState, 0, len(profiles))
	for idx, profile := range profiles {
		commitment := 0.35
		if profile.XPLevel == domain.ExperienceSenior {
			commitment = 0.45
		}
		states = append(states, &AgentState{
			Profile:       profile,
			Idea:          profile.Idea,
			OriginIdea:    profile.Idea,
			Collaborators: make(map[string]struct{}),
			Commitment:    commitment,
			Energy:        minFloat(0.6+0.05*float64(idx), energyCeil),
		})
	}
	return states
}

func (s *AgentState) addCommitment(delta float64) {
	s.Commitment = clamp(s.Commitment+delta, commitmentFloor, commitmentCeil)
}

func (s *AgentState) addEnergy(delta float64) {
	s.Energy = clamp(s.Energy+delta, 0, energyCeil)
}
