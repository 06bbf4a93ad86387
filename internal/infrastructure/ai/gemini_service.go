package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"google.golang.org/genai"

	"github.com/jhoicas/valoracion-api/internal/application/ports"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// Verificar en tiempo de compilación que GeminiService implementa LLMService.
var _ ports.LLMService = (*GeminiService)(nil)

// ── Prompts ───────────────────────────────────────────────────────────────────

// extractionPrompt define el rol del modelo y el JSON esperado. Con
// ResponseMIMEType=application/json Gemini devuelve JSON puro; igual se repara
// antes de deserializar porque a veces corta la salida.
const extractionPrompt = `Sos un despachante de aduana argentino. Leé el documento comercial adjunto
(factura, packing list o contrato) y devolvé ÚNICAMENTE un objeto JSON con esta estructura:
{
  "operation_type": "exportacion" | "importacion",
  "exporter": "<razón social>",
  "importer": "<razón social>",
  "item_description": "<descripción de la mercadería>",
  "ncm_code": "<posición NCM si figura>",
  "incoterm": "<EXW|FCA|FAS|FOB|CFR|CIF|CPT|CIP|DAP|DPU|DDP>",
  "currency": "<código ISO 4217>",
  "invoice_number": "<número>",
  "invoice_date": "<YYYY-MM-DD>",
  "base_item_value": <precio total de la mercadería como número>,
  "answers": { "<id>": {"status": "yes"|"no", "amount": <número>} },
  "origin_certificate": "yes" | "no" | "unanswered",
  "confidence": <0.0 a 1.0>,
  "notes": "<observaciones breves en español>"
}

Preguntas (id: tema). Respondé sólo las que el documento permite afirmar; omití el resto.
%s
Reglas:
- Montos en la moneda de la factura, sin símbolos.
- "amount" sólo para adiciones o deducciones respondidas "yes".
- No inventes datos: si un campo no figura, dejalo vacío.`

// chatPrompt es la instrucción de sistema del asistente de consultas.
const chatPrompt = `Sos un asistente experto en valoración aduanera argentina (Acuerdo de Valoración
del GATT, Arts. 1 a 8, y RG AFIP 2010/2006). Respondé en español rioplatense, de forma breve
y citando el artículo cuando corresponda. Si la consulta excede la valoración aduanera, decilo.`

// GeminiService adaptador que implementa LLMService con el SDK oficial de Google GenAI.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService construye el adaptador. model suele ser "gemini-2.0-flash".
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("AI: GEMINI_API_KEY no configurado")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AI: crear cliente GenAI: %w", err)
	}
	return &GeminiService{client: client, model: model}, nil
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// ExtractValuation envía el documento como parte binaria junto con el prompt de extracción.
func (s *GeminiService) ExtractValuation(
	ctx context.Context,
	document []byte,
	mimeType string,
	hint string,
) (*valuation.Extraction, error) {
	parts := []*genai.Part{genai.NewPartFromBytes(document, mimeType)}
	if hint != "" {
		parts = append(parts, genai.NewPartFromText("Indicaciones del usuario: "+hint))
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)), // baja temperatura: extracción determinista
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: fmt.Sprintf(extractionPrompt, questionCatalogue())}},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("AI: Gemini: %w", err)
	}
	return parseExtraction(result.Text())
}

// Chat reenvía el historial y la pregunta nueva.
func (s *GeminiService) Chat(ctx context.Context, history []ports.ChatTurn, question string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, h := range history {
		role := genai.Role(genai.RoleUser)
		if h.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(h.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(question, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.4)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: chatPrompt}},
		},
	}
	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("AI: Gemini: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}
	return text, nil
}

// ── Parsing ───────────────────────────────────────────────────────────────────

// parseExtraction limpia bloques de markdown, repara el JSON y lo deserializa.
func parseExtraction(raw string) (*valuation.Extraction, error) {
	raw = stripFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}

	var out valuation.Extraction
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(raw)
		if rerr != nil {
			return nil, fmt.Errorf("AI: respuesta del modelo no es JSON válido: %w", rerr)
		}
		if err := json.Unmarshal([]byte(repaired), &out); err != nil {
			return nil, fmt.Errorf("AI: respuesta del modelo no es JSON válido: %w", err)
		}
	}
	return &out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// questionCatalogue lista las preguntas para el prompt: "q5 (adición): título".
func questionCatalogue() string {
	var sb strings.Builder
	for _, q := range valuation.Questions() {
		kind := "general"
		switch q.Category {
		case valuation.CategoryAddition:
			kind = "adición"
		case valuation.CategoryDeduction:
			kind = "deducción"
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n", q.ID, kind, q.Title)
	}
	return sb.String()
}
