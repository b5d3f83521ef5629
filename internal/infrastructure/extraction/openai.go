package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// AIExtractor recovers invoice fields from raw document text with an LLM.
// It is the fallback behind the rule parser for layouts the patterns do not
// cover.
type AIExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewAIExtractor creates a new AIExtractor.
func NewAIExtractor(apiKey, model string, logger *zap.Logger) *AIExtractor {
	return &AIExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// ExtractFromText asks the model for the header and line items of the
// document as JSON matching our extraction schema.
func (e *AIExtractor) ExtractFromText(ctx context.Context, text string) (*entity.ExtractionResult, error) {
	prompt := fmt.Sprintf(`Extract invoice information from this garage/workshop invoice text:

%s

Return JSON with the following structure:
{
  "header": {
    "invoice_no": "invoice number",
    "code_no": "internal code number if present",
    "reference": "reference or LPO number",
    "date": "invoice date as printed",
    "customer_name": "customer or billed-to name",
    "phone": "customer phone",
    "email": "customer email",
    "address": "customer address",
    "subtotal": "subtotal before tax",
    "tax": "tax or VAT amount",
    "tax_rate": "tax percentage without the %% sign",
    "total": "grand total",
    "payment_method": "payment method or terms text",
    "delivery_terms": "delivery terms if present",
    "remarks": "remarks if present",
    "seller_name": "issuing business name",
    "seller_address": "issuing business address",
    "seller_phone": "issuing business phone",
    "seller_email": "issuing business email",
    "seller_tax_id": "seller PIN/TIN",
    "seller_vat_reg": "seller VAT registration"
  },
  "items": [
    {"code": "item code", "description": "line description", "qty": "quantity", "unit": "unit of measure", "rate": "unit price", "value": "line total"}
  ]
}
Use empty strings for fields that are absent. All values are strings exactly as printed, without currency symbols.`, text)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert at reading vehicle workshop and parts invoices. Extract all fields accurately.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("AI extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no AI response")
	}

	content := resp.Choices[0].Message.Content
	var payload struct {
		Header entity.ExtractionHeader `json:"header"`
		Items  []entity.RawLineItem    `json:"items"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		e.logger.Error("Failed to parse AI extraction result",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return &entity.ExtractionResult{
		Success: payload.Header.CustomerName != "" || payload.Header.InvoiceNo != "" || payload.Header.Total != "" || len(payload.Items) > 0,
		Header:  payload.Header,
		Items:   payload.Items,
		RawText: text,
	}, nil
}
