package model

// IntentKind is the classified purpose of a query.
type IntentKind string

const (
	IntentSkillDiscovery  IntentKind = "skill_discovery"
	IntentResourceFinding IntentKind = "resource_finding"
	IntentCareerAdvice    IntentKind = "career_advice"
	IntentComparison      IntentKind = "comparison"
	IntentTrendAnalysis   IntentKind = "trend_analysis"
	IntentGeneral         IntentKind = "general"
)

// SearchStrategy hints how broad retrieval should be.
type SearchStrategy string

const (
	StrategyBroad       SearchStrategy = "broad_search"
	StrategyTargeted    SearchStrategy = "targeted_search"
	StrategyComparative SearchStrategy = "comparative_search"
)

// Intent is the validated classifier output.
type Intent struct {
	Kind         IntentKind     `json:"intent" validate:"required,oneof=skill_discovery resource_finding career_advice comparison trend_analysis general"`
	Entities     []string       `json:"entities" validate:"max=10,dive,required,max=200"`
	Strategy     SearchStrategy `json:"search_strategy" validate:"required,oneof=broad_search targeted_search comparative_search"`
	ContextNeeds []string       `json:"context_needs" validate:"required,min=1,dive,required,max=100"`
}

// DefaultIntent is used whenever classification fails or is only partial.
func DefaultIntent() Intent {
	return Intent{
		Kind:         IntentSkillDiscovery,
		Entities:     []string{},
		Strategy:     StrategyBroad,
		ContextNeeds: []string{"skills", "resources"},
	}
}
