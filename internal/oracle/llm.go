package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/iliyamo/menu-factory/internal/config"
	"github.com/iliyamo/menu-factory/internal/metrics"
	"github.com/iliyamo/menu-factory/internal/model"
)

var languageNames = map[model.Language]string{
	model.LangES: "Spanish",
	model.LangEU: "Basque",
	model.LangEN: "English",
	model.LangFR: "French",
	model.LangDE: "German",
	model.LangIT: "Italian",
}

const analyzeSystem = `You are an expert chef and nutritionist. Analyse the Spanish dish name you are given.
1. Translate it to Basque (EU), English (EN), French (FR), German (DE) and Italian (IT).
2. Detect likely allergens from the name and common culinary knowledge, choosing only from:
   GLUTEN, CRUSTACEOS, HUEVOS, PESCADO, CACAHUETES, SOJA, LACTEOS, APIO, MOSTAZA, SESAMO, SULFITOS, ALTRAMUCES, MOLUSCOS.
Answer with JSON only: {"translations": {"EU": "", "EN": "", "FR": "", "DE": "", "IT": ""}, "allergens": []}`

const generateSystem = `You digitise and create restaurant menus. Build a menu from the user instructions and/or the attached file.
Extract the dishes of the file when there is one; for a bare concept create 20 to 30 fitting dishes and estimate prices.
Answer with JSON only:
{"slogan": "short slogan", "initialPlatos": [{"ES_Nombre": "", "EU_Nombre": "", "EN_Nombre": "", "FR_Nombre": "", "DE_Nombre": "",
 "IT_Nombre": "", "Precio": 12.5, "Tipo": "ENTRANTE|ENSALADA|ARROZ|MARISCO|PESCADO|CARNE|POSTRE", "Es_Racion": false,
 "Alergenos": ["GLUTEN"]}]}`

const translateSystem = "You translate restaurant menus from Spanish. Keep it concise and keep the capitalisation. Reply with the translation only, no quotes."

// LLM implements Analyzer on any langchaingo model.
type LLM struct {
	model       llms.Model
	temperature float64
}

// New connects to the OpenAI-compatible endpoint described by cfg.
func New(cfg config.Config) (*LLM, error) {
	if cfg.AIAPIKey == "" {
		return nil, ErrNoAPIKey
	}
	opts := []openai.Option{
		openai.WithToken(cfg.AIAPIKey),
		openai.WithModel(cfg.AIModel),
	}
	if cfg.AIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.AIBaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return NewWithModel(client), nil
}

// NewWithModel wraps an existing model; tests pass a mock here.
func NewWithModel(m llms.Model) *LLM {
	return &LLM{model: m, temperature: 0.2}
}

func (o *LLM) call(ctx context.Context, op string, messages []llms.MessageContent, jsonMode bool) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(o.temperature)}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}
	start := time.Now()
	resp, err := o.model.GenerateContent(ctx, messages, opts...)
	metrics.OracleLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil && (resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "") {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		metrics.OracleRequests.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("oracle %s: %w", op, err)
	}
	metrics.OracleRequests.WithLabelValues(op, "ok").Inc()
	return resp.Choices[0].Content, nil
}

// parseJSON decodes a JSON object, tolerating markdown code fences.
func parseJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parse oracle json: %w", err)
	}
	return doc, nil
}

// AnalyzeDish returns translations and allergens for a Spanish dish name.
// On failure it returns Empty() and the error.
func (o *LLM) AnalyzeDish(ctx context.Context, name string) (DishAnalysis, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Empty(), nil
	}
	text, err := o.call(ctx, "analyze", []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, analyzeSystem),
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf("Dish name: %q", name)),
	}, true)
	if err != nil {
		return Empty(), err
	}
	doc, err := parseJSON(text)
	if err != nil {
		return Empty(), err
	}
	return decodeAnalysis(doc)
}

// GenerateMenu drafts a seed menu.  There is no sane partial result, so any
// failure is returned.
func (o *LLM) GenerateMenu(ctx context.Context, req GenerateRequest) (GeneratedMenu, error) {
	parts := []llms.ContentPart{}
	if len(req.File) > 0 && req.MimeType != "" {
		if isTextual(req.MimeType) {
			parts = append(parts, llms.TextContent{Text: "User file content:\n" + string(req.File)})
		} else {
			parts = append(parts, llms.BinaryPart(req.MimeType, req.File))
		}
	}
	instructions := strings.TrimSpace(req.Prompt)
	if req.Name != "" {
		instructions = fmt.Sprintf("Restaurant name: %s\n%s", req.Name, instructions)
	}
	parts = append(parts, llms.TextContent{Text: "User instructions: " + instructions})

	text, err := o.call(ctx, "generate", []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, generateSystem),
		{Role: schema.ChatMessageTypeHuman, Parts: parts},
	}, true)
	if err != nil {
		return GeneratedMenu{}, err
	}
	doc, err := parseJSON(text)
	if err != nil {
		return GeneratedMenu{}, err
	}
	menu, err := decodeMenu(doc)
	if err != nil {
		return GeneratedMenu{}, err
	}
	if len(menu.Dishes) == 0 {
		return GeneratedMenu{}, fmt.Errorf("oracle generate: no dishes in answer")
	}
	return menu, nil
}

// Translate returns text in the target language, or text itself when the
// oracle fails.
func (o *LLM) Translate(ctx context.Context, text string, target model.Language) string {
	if strings.TrimSpace(text) == "" || target == model.LangES {
		return text
	}
	name, ok := languageNames[target]
	if !ok {
		return text
	}
	out, err := o.call(ctx, "translate", []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, translateSystem),
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf("Translate %q to %s (code: %s).", text, name, target)),
	}, false)
	if err != nil {
		log.Printf("oracle: translate to %s failed: %v", target, err)
		return text
	}
	return strings.Trim(strings.TrimSpace(out), `"`)
}

func isTextual(mime string) bool {
	return strings.HasPrefix(mime, "text/") || mime == "application/json"
}
