package generator

import (
	"fmt"
	"strings"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/llm"
)

const systemPrompt = `You are a senior project management consultant certified in PMBOK and BABOK practices. Produce professional, board-ready project documentation in clean markdown. Be specific and actionable. Ground every section in the project information and prior documents provided. Do not invent stakeholders, dates, or budget figures that are not supported by the input.`

// artifactInstructions holds the document-specific body of the user prompt.
// Each entry lists the sections the artifact is expected to contain.
var artifactInstructions = map[artifact.Type]string{
	artifact.ProjectCharter: `Write a Project Charter with these sections:
1. Project Purpose and Justification
2. Measurable Objectives and Success Criteria
3. High-Level Requirements
4. High-Level Project Description and Boundaries
5. Overall Project Risk
6. Summary Milestone Schedule
7. Preapproved Financial Resources
8. Key Stakeholder List
9. Project Approval Requirements
10. Assigned Project Manager, Responsibility, and Authority Level`,

	artifact.BusinessCase: `Write a Business Case with these sections:
1. Executive Summary
2. Problem Statement
3. Analysis of Options (including do-nothing)
4. Cost-Benefit Analysis
5. Recommendation
6. Implementation Timeline`,

	artifact.ScopeStatement: `Write a Project Scope Statement with these sections:
1. Product Scope Description
2. Project Deliverables
3. Acceptance Criteria
4. Project Exclusions
5. Constraints
6. Assumptions`,

	artifact.Requirements: `Write a Requirements Document with these sections:
1. Business Requirements
2. Stakeholder Requirements
3. Functional Requirements (numbered, testable statements)
4. Non-Functional Requirements
5. Transition Requirements
6. Requirements Traceability notes`,

	artifact.StakeholderRegister: `Write a Stakeholder Register. For each stakeholder include: name or role, organizational position, project role, contact expectations, influence level (high/medium/low), interest level (high/medium/low), and engagement strategy. Present the register as a markdown table followed by engagement notes for the high-influence stakeholders.`,

	artifact.WBS: `Write a Work Breakdown Structure with these sections:
1. WBS hierarchy to at least three levels, numbered (1, 1.1, 1.1.1)
2. WBS Dictionary: for each work package give a short description, deliverable, and estimated effort
3. Notes on decomposition rationale`,

	artifact.RiskPlan: `Write a Risk Management Plan with these sections:
1. Risk Management Approach
2. Risk Register: markdown table with ID, description, category, probability, impact, score, response strategy, and owner
3. Top Risks Analysis
4. Contingency and Fallback Plans
5. Risk Monitoring Cadence`,

	artifact.QualityPlan: `Write a Quality Management Plan with these sections:
1. Quality Standards and Objectives
2. Quality Metrics with target values
3. Quality Assurance Activities
4. Quality Control Activities
5. Acceptance Process`,

	artifact.CommunicationsPlan: `Write a Communications Management Plan with these sections:
1. Communication Objectives
2. Communication Matrix: markdown table with audience, message, channel, frequency, and owner
3. Escalation Paths
4. Meeting Cadence
5. Information Storage and Access`,

	artifact.SchedulePlan: `Write a Schedule Management Plan with these sections:
1. Scheduling Methodology
2. Milestone List with target dates expressed relative to project start
3. Activity Sequencing and Dependencies
4. Critical Path Narrative
5. Schedule Control Thresholds`,

	artifact.CostPlan: `Write a Cost Management Plan with these sections:
1. Cost Estimation Approach
2. Budget Breakdown by WBS element
3. Funding Requirements
4. Cost Baseline and Contingency Reserves
5. Cost Control and Earned Value Measures`,

	artifact.ResourcePlan: `Write a Resource Management Plan with these sections:
1. Team Structure and Roles
2. RACI Matrix as a markdown table
3. Resource Acquisition Plan
4. Training Needs
5. Team Development and Recognition Approach`,

	artifact.ProcurementPlan: `Write a Procurement Management Plan with these sections:
1. Make-or-Buy Analysis
2. Procurement Items and Contract Types
3. Vendor Selection Criteria
4. Procurement Schedule
5. Contract Management and Closeout`,
}

// buildMessages assembles the conversation for generating one artifact.
// docContext is the budgeted context assembled from the project summary and
// previously generated documents.
func buildMessages(docType artifact.Type, projectName, docContext string) []llm.Message {
	instructions, ok := artifactInstructions[docType]
	if !ok {
		instructions = fmt.Sprintf("Write a %s for this project in professional markdown.", artifact.Title(docType))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Project: %s\n\n", projectName))
	if docContext != "" {
		b.WriteString("Project summary and existing documentation for context:\n\n")
		b.WriteString(docContext)
		b.WriteString("\n\n")
	}
	b.WriteString(instructions)
	b.WriteString("\n\nReturn only the document in markdown. Start with a level-1 heading.")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}
