package generator

import (
	"context"

	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Params mirrors the TGI generate endpoint's sampling parameters.
type Params struct {
	MaxNewTokens      int      `json:"max_new_tokens"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
	DoSample          bool     `json:"do_sample"`
	Stop              []string `json:"stop"`
}

func DefaultParams() Params {
	return Params{
		MaxNewTokens:      150,
		Temperature:       0.7,
		TopP:              0.9,
		RepetitionPenalty: 1.2,
		DoSample:          true,
		Stop:              []string{"\n\n"},
	}
}

// TextGenerator is a pure function of (prompt, parameters); network errors,
// timeouts and non-2xx responses are all hard failures for the single call.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

type generateRequest struct {
	Inputs     string `json:"inputs"`
	Parameters Params `json:"parameters"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Client talks to a TGI-compatible text-generation endpoint.
type Client struct {
	client *resty.Client
}

func NewClient(cfg conf.LLM) *Client {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{client: client}
}

func (c *Client) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	var result generateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Inputs: prompt, Parameters: params}).
		SetResult(&result).
		Post("/generate")
	if err != nil {
		log.Warnf("text generation call failed: %v", err)
		return "", errors.Wrap(err, "AI service unavailable")
	}
	if resp.IsError() {
		return "", errors.Errorf("AI service unavailable: TGI API error: %d %s", resp.StatusCode(), resp.Status())
	}
	return result.GeneratedText, nil
}
