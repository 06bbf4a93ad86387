package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/valoracion-api/internal/application/ports"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// Verificar en tiempo de compilación que AnthropicService implementa LLMService.
var _ ports.LLMService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 2048
)

// AnthropicService adaptador de LLMService sobre la API REST Messages de Anthropic.
// No hay SDK en el stack; se habla JSON con net/http.
type AnthropicService struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador. El timeout de red es un techo;
// el use case impone además su propio context.WithTimeout.
func NewAnthropicService(apiKey, model string) (*AnthropicService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &AnthropicService{
		apiKey:     apiKey,
		model:      model,
		endpoint:   anthropicMessagesURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// WithEndpoint apunta el adaptador a otra URL (proxy corporativo, tests).
func (s *AnthropicService) WithEndpoint(url string) *AnthropicService {
	s.endpoint = url
	return s
}

// ── Protocolo Messages ────────────────────────────────────────────────────────

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// ExtractValuation manda el documento como bloque "document" (PDF o texto) o "image".
func (s *AnthropicService) ExtractValuation(
	ctx context.Context,
	document []byte,
	mimeType string,
	hint string,
) (*valuation.Extraction, error) {
	src := &anthropicSource{
		Type:      "base64",
		MediaType: mimeType,
		Data:      base64.StdEncoding.EncodeToString(document),
	}
	kind := "document"
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		kind = "image"
	case mimeType == "text/plain":
		src = &anthropicSource{Type: "text", MediaType: mimeType, Data: string(document)}
	case mimeType != "application/pdf":
		return nil, fmt.Errorf("AI: tipo de documento no soportado por Anthropic: %s", mimeType)
	}
	blocks := []anthropicBlock{{Type: kind, Source: src}}
	text := "Extraé los datos de la operación."
	if hint != "" {
		text += "\nIndicaciones del usuario: " + hint
	}
	blocks = append(blocks, anthropicBlock{Type: "text", Text: text})

	raw, err := s.send(ctx, anthropicRequest{
		Model:       s.model,
		MaxTokens:   anthropicMaxTokens,
		System:      fmt.Sprintf(extractionPrompt, questionCatalogue()),
		Temperature: 0.1,
		Messages:    []anthropicMessage{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return nil, err
	}
	return parseExtraction(raw)
}

// Chat traduce el historial al formato user/assistant de Messages.
func (s *AnthropicService) Chat(ctx context.Context, history []ports.ChatTurn, question string) (string, error) {
	msgs := make([]anthropicMessage, 0, len(history)+1)
	for _, h := range history {
		role := "user"
		if h.Role == "model" {
			role = "assistant"
		}
		msgs = append(msgs, anthropicMessage{Role: role, Content: []anthropicBlock{{Type: "text", Text: h.Text}}})
	}
	msgs = append(msgs, anthropicMessage{Role: "user", Content: []anthropicBlock{{Type: "text", Text: question}}})

	text, err := s.send(ctx, anthropicRequest{
		Model:       s.model,
		MaxTokens:   anthropicMaxTokens,
		System:      chatPrompt,
		Temperature: 0.4,
		Messages:    msgs,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("AI: Anthropic devolvió respuesta vacía")
	}
	return text, nil
}

// send hace el POST y concatena los bloques de texto de la respuesta.
func (s *AnthropicService) send(ctx context.Context, payload anthropicRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	var out anthropicResponse
	jsonErr := json.Unmarshal(rawBody, &out)
	if resp.StatusCode != http.StatusOK {
		if jsonErr == nil && out.Error != nil {
			return "", fmt.Errorf("AI: Anthropic error (%s): %s", out.Error.Type, out.Error.Message)
		}
		return "", fmt.Errorf("AI: Anthropic HTTP %d", resp.StatusCode)
	}
	if jsonErr != nil {
		return "", fmt.Errorf("AI: deserializar respuesta Anthropic: %w", jsonErr)
	}

	var sb strings.Builder
	for _, c := range out.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}
