package ingestion

// DFCXIngestor simulates extraction of prompts from Dialogflow CX
// generators. A real deployment would fetch generator configurations through
// the Dialogflow CX API; here the extracted results are canned.
type DFCXIngestor struct{}

// NewDFCXIngestor creates a DFCX ingestor.
func NewDFCXIngestor() *DFCXIngestor { return &DFCXIngestor{} }

// Name returns the source system identifier.
func (i *DFCXIngestor) Name() string { return "dfcx" }

// Prompts returns the sample DFCX generator prompts.
func (i *DFCXIngestor) Prompts() ([]SeedPrompt, error) {
	return []SeedPrompt{
		{
			Name:        "billing_payment_query",
			Domain:      "billing",
			Source:      "dfcx",
			Environment: "dev",
			SystemInstructions: "You are a billing support assistant for a telecom company. " +
				"Always be polite, concise, and empathetic. " +
				"Never share sensitive payment details in plain text. " +
				"If you cannot resolve the issue, escalate to a human agent.",
			Template: "Customer has a query about: {issue_type}\n" +
				"Account ID: {account_id}\n" +
				"Last payment date: {last_payment_date}\n\n" +
				"Provide a clear resolution or next steps for the customer.",
			ModelParameters: map[string]any{
				"model":             "gemini-1.5-pro",
				"temperature":       0.3,
				"max_output_tokens": 512,
				"top_p":             0.8,
				"top_k":             20,
			},
			Metadata: map[string]any{
				"source_agent": "telecom-billing-agent-v2",
				"generator_id": "gen-billing-001",
				"dfcx_project": "telecom-cx-project",
				"extracted_by": "dfcx_ingestor",
			},
		},
	}, nil
}
