package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listProjectsTool defines the list_projects MCP tool.
var listProjectsTool = mcp.NewTool("list_projects",
	mcp.WithDescription("List all documentation projects with their ids, names, and descriptions."),
)

// listDocumentsTool defines the list_documents MCP tool.
var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List the documents of a project: type, title, category, and provenance."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project id"),
	),
)

// getDocumentTool defines the get_document MCP tool.
var getDocumentTool = mcp.NewTool("get_document",
	mcp.WithDescription("Get the full markdown content of one document."),
	mcp.WithString("document_id",
		mcp.Required(),
		mcp.Description("Document id as returned by list_documents"),
	),
)

// generateDocumentTool defines the generate_document MCP tool.
var generateDocumentTool = mcp.NewTool("generate_document",
	mcp.WithDescription("Generate a project management document (charter, WBS, risk plan, ...) for a project. Previously generated documents are used as context."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project id"),
	),
	mcp.WithString("type",
		mcp.Required(),
		mcp.Description("Document type to generate"),
		mcp.Enum(
			"project-charter", "business-case", "scope-statement",
			"requirements-document", "stakeholder-register",
			"work-breakdown-structure", "risk-management-plan",
			"quality-management-plan", "communications-plan",
			"schedule-management-plan", "cost-management-plan",
			"resource-management-plan", "procurement-management-plan",
		),
	),
)

// providerStatusTool defines the provider_status MCP tool.
var providerStatusTool = mcp.NewTool("provider_status",
	mcp.WithDescription("Report the health and fallback order of the configured LLM providers."),
)
