package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/infradyn/docextract/internal/common"
	"github.com/infradyn/docextract/internal/entity"
)

// Parser turns document text into structured records via the chat model. Every
// Parse method returns a usable value even on failure: the zero-confidence
// fallback record alongside a MALFORMED_MODEL_RESPONSE or TRANSPORT_ERROR so
// the caller can decide whether to surface or mask the error.
type Parser struct {
	chat   ChatCompleter
	logger *slog.Logger

	poSchema        *jsonschema.Schema
	invoiceSchema   *jsonschema.Schema
	milestoneSchema *jsonschema.Schema
}

func NewParser(chat ChatCompleter, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{chat: chat, logger: logger}

	var err error
	if p.poSchema, err = compileSchema("purchase_order.json", BuildPurchaseOrderSchema()); err != nil {
		return nil, err
	}
	if p.invoiceSchema, err = compileSchema("invoice.json", BuildInvoiceSchema()); err != nil {
		return nil, err
	}
	if p.milestoneSchema, err = compileSchema("milestones.json", BuildMilestonesSchema()); err != nil {
		return nil, err
	}
	return p, nil
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return compiled, nil
}

// ParsePurchaseOrder extracts purchase-order fields from text. On any model or
// decoding failure the returned record is the null-filled fallback and the
// error carries the failure kind.
func (p *Parser) ParsePurchaseOrder(ctx context.Context, text string) (entity.PurchaseOrder, error) {
	start := time.Now()
	p.logger.Info("llm.parse.start", "doc_type", "purchase_order", "chars", len(text))

	po := entity.EmptyPurchaseOrder()
	raw, err := p.complete(ctx, systemPromptObject, BuildPurchaseOrderPrompt(text), maxTokensDocument)
	if err != nil {
		return po, err
	}
	if err := p.decode(raw, p.poSchema, &po); err != nil {
		return entity.EmptyPurchaseOrder(), err
	}
	if po.Milestones == nil {
		po.Milestones = []entity.Milestone{}
	}
	if po.BOQItems == nil {
		po.BOQItems = []entity.BOQItem{}
	}

	p.logger.Info("llm.parse.ok", "doc_type", "purchase_order",
		"milestones", len(po.Milestones), "boq_items", len(po.BOQItems),
		"confidence", po.Confidence, "elapsed_ms", time.Since(start).Milliseconds())
	return po, nil
}

// ParseInvoice extracts invoice fields from text, with the same fallback
// contract as ParsePurchaseOrder.
func (p *Parser) ParseInvoice(ctx context.Context, text string) (entity.Invoice, error) {
	start := time.Now()
	p.logger.Info("llm.parse.start", "doc_type", "invoice", "chars", len(text))

	inv := entity.EmptyInvoice()
	raw, err := p.complete(ctx, systemPromptObject, BuildInvoicePrompt(text), maxTokensDocument)
	if err != nil {
		return inv, err
	}
	if err := p.decode(raw, p.invoiceSchema, &inv); err != nil {
		return entity.EmptyInvoice(), err
	}
	if inv.LineItems == nil {
		inv.LineItems = []entity.LineItem{}
	}

	p.logger.Info("llm.parse.ok", "doc_type", "invoice",
		"line_items", len(inv.LineItems), "confidence", inv.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds())
	return inv, nil
}

// ParseMilestones extracts a milestone schedule from text. The fallback is the
// empty, non-nil slice.
func (p *Parser) ParseMilestones(ctx context.Context, text string) ([]entity.Milestone, error) {
	start := time.Now()
	p.logger.Info("llm.parse.start", "doc_type", "milestone", "chars", len(text))

	raw, err := p.complete(ctx, systemPromptArray, BuildMilestonesPrompt(text), maxTokensMilestones)
	if err != nil {
		return []entity.Milestone{}, err
	}
	milestones := []entity.Milestone{}
	if err := p.decode(raw, p.milestoneSchema, &milestones); err != nil {
		return []entity.Milestone{}, err
	}

	p.logger.Info("llm.parse.ok", "doc_type", "milestone",
		"milestones", len(milestones), "elapsed_ms", time.Since(start).Milliseconds())
	return milestones, nil
}

func (p *Parser) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	raw, err := p.chat.Complete(ctx, system, user, maxTokens)
	if err != nil {
		return "", common.NewTransportError("model request failed", err)
	}
	return StripCodeFence(raw), nil
}

// decode validates raw against schema and unmarshals it into out. Validation
// runs on the generically-decoded value so schema errors name the offending
// path rather than a Go type mismatch.
func (p *Parser) decode(raw string, schema *jsonschema.Schema, out any) error {
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		p.logger.Warn("llm.parse.bad_json", "error", err)
		return common.NewMalformedModelResponse("model response was not valid JSON", err)
	}
	if err := schema.Validate(generic); err != nil {
		p.logger.Warn("llm.parse.schema_violation", "error", err)
		return common.NewMalformedModelResponse("model response violated the expected schema", err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return common.NewMalformedModelResponse("model response did not match the target shape", err)
	}
	return nil
}
