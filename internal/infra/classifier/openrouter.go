package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/algemiroteran/canvabot/internal/funnel"
	"github.com/algemiroteran/canvabot/internal/infra/http/middleware"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Prompt fijo: obliga al modelo a devolver exactamente una de las seis
// etiquetas, en minúsculas y sin explicación.
const intentPrompt = `Quiero que analices el siguiente mensaje de WhatsApp de un usuario que quiere información sobre Canva Premium.

Tu tarea es identificar su intención exacta. Devuélveme solamente una de estas etiquetas (en minúsculas, sin explicación):

- info_campaña
- enviar_correo
- confirmar_activacion
- preguntar_pago
- confirmar_pago
- otro

Mensaje: """%s"""`

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify pide la intención al modelo remoto. Nunca devuelve error: ante
// cualquier falla de red, de la API o de parseo degrada a "otro" y lo deja
// en el log, para que el motor siga andando.
func (c *Client) Classify(ctx context.Context, text string) funnel.Intent {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(intentPrompt, text)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.fallback(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return c.fallback(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fallback(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return c.fallback(fmt.Errorf("status %d: %s", resp.StatusCode, string(raw)))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return c.fallback(err)
	}
	if len(response.Choices) == 0 {
		return c.fallback(fmt.Errorf("respuesta sin choices"))
	}

	return funnel.ParseIntent(response.Choices[0].Message.Content)
}

func (c *Client) fallback(err error) funnel.Intent {
	log.Printf("❌ Error con OpenRouter: %v", err)
	middleware.RecordClassificationError()
	return funnel.IntentOther
}
