// Package artifact defines the catalog of project-management document types
// pmdoc can generate, with their priorities and inter-document relationships.
package artifact

// Type identifies one PMBOK/BABOK-style document type.
type Type string

const (
	ProjectCharter      Type = "project-charter"
	BusinessCase        Type = "business-case"
	ScopeStatement      Type = "scope-statement"
	Requirements        Type = "requirements-document"
	StakeholderRegister Type = "stakeholder-register"
	WBS                 Type = "work-breakdown-structure"
	RiskPlan            Type = "risk-management-plan"
	QualityPlan         Type = "quality-management-plan"
	CommunicationsPlan  Type = "communications-plan"
	SchedulePlan        Type = "schedule-management-plan"
	CostPlan            Type = "cost-management-plan"
	ResourcePlan        Type = "resource-management-plan"
	ProcurementPlan     Type = "procurement-management-plan"
)

// Category groups document types by process group.
type Category string

const (
	CategoryInitiation Category = "initiation"
	CategoryPlanning   Category = "planning"
	CategoryAnalysis   Category = "analysis"
	CategoryImported   Category = "imported"
)

// Priority is the tier used by the context budgeter when deciding what to
// keep under a tight token budget.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

type info struct {
	Title    string
	Category Category
	Priority Priority
}

// catalog is the static table of known document types.
var catalog = map[Type]info{
	ProjectCharter:      {"Project Charter", CategoryInitiation, PriorityCritical},
	BusinessCase:        {"Business Case", CategoryInitiation, PriorityCritical},
	ScopeStatement:      {"Project Scope Statement", CategoryPlanning, PriorityCritical},
	Requirements:        {"Requirements Document", CategoryAnalysis, PriorityCritical},
	StakeholderRegister: {"Stakeholder Register", CategoryInitiation, PriorityHigh},
	WBS:                 {"Work Breakdown Structure", CategoryPlanning, PriorityHigh},
	RiskPlan:            {"Risk Management Plan", CategoryPlanning, PriorityHigh},
	QualityPlan:         {"Quality Management Plan", CategoryPlanning, PriorityMedium},
	CommunicationsPlan:  {"Communications Management Plan", CategoryPlanning, PriorityMedium},
	SchedulePlan:        {"Schedule Management Plan", CategoryPlanning, PriorityMedium},
	CostPlan:            {"Cost Management Plan", CategoryPlanning, PriorityMedium},
	ResourcePlan:        {"Resource Management Plan", CategoryPlanning, PriorityLow},
	ProcurementPlan:     {"Procurement Management Plan", CategoryPlanning, PriorityLow},
}

// relationships maps a document type to the prior documents whose content is
// useful context when generating it, in append order. The order is the
// declared order here, not relevance-sorted.
var relationships = map[Type][]Type{
	ProjectCharter:      {BusinessCase},
	BusinessCase:        {},
	ScopeStatement:      {ProjectCharter, BusinessCase, Requirements},
	Requirements:        {ProjectCharter, BusinessCase, StakeholderRegister},
	StakeholderRegister: {ProjectCharter, BusinessCase},
	WBS:                 {ScopeStatement, ProjectCharter, Requirements},
	RiskPlan:            {ProjectCharter, ScopeStatement, WBS},
	QualityPlan:         {ScopeStatement, Requirements, WBS},
	CommunicationsPlan:  {StakeholderRegister, ProjectCharter},
	SchedulePlan:        {WBS, ScopeStatement, ResourcePlan},
	CostPlan:            {WBS, SchedulePlan, ResourcePlan},
	ResourcePlan:        {WBS, SchedulePlan},
	ProcurementPlan:     {ScopeStatement, CostPlan, SchedulePlan},
}

// Known reports whether t is a recognized document type.
func Known(t Type) bool {
	_, ok := catalog[t]
	return ok
}

// Title returns the display title for t, or the raw type string when unknown.
func Title(t Type) string {
	if in, ok := catalog[t]; ok {
		return in.Title
	}
	return string(t)
}

// CategoryOf returns the process-group category for t. Unknown types are
// treated as imported content.
func CategoryOf(t Type) Category {
	if in, ok := catalog[t]; ok {
		return in.Category
	}
	return CategoryImported
}

// PriorityOf returns the budgeting priority for t. Unknown types are low.
func PriorityOf(t Type) Priority {
	if in, ok := catalog[t]; ok {
		return in.Priority
	}
	return PriorityLow
}

// RelatedTypes returns the declared related types for t, in table order.
func RelatedTypes(t Type) []Type {
	return relationships[t]
}

// All returns every known type in a stable generation order: initiation
// documents first, then analysis, then planning.
func All() []Type {
	return []Type{
		BusinessCase,
		ProjectCharter,
		StakeholderRegister,
		Requirements,
		ScopeStatement,
		WBS,
		RiskPlan,
		QualityPlan,
		CommunicationsPlan,
		SchedulePlan,
		CostPlan,
		ResourcePlan,
		ProcurementPlan,
	}
}
