package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/types"
	"github.com/sparkmetric/citewatch-backend/internal/utils"
)

// CitationChecker is the external check capability: given a (query, domain,
// user, engine) tuple it asks one answer engine whether the domain shows up
// as a source for the query.
type CitationChecker interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)
}

type CheckRequest struct {
	Query  string
	Domain string
	UserID uuid.UUID
	Engine types.AnswerEngine
}

type CheckResult struct {
	IsCited          bool
	CitationPosition int
	AnswerText       string
	CitedSources     []types.CitedSource
	Recommendations  string
	Engine           types.AnswerEngine
}

type CitationAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func CitationAPIConfigFromEnv(log *logger.Logger) CitationAPIConfig {
	timeoutSec := utils.GetEnvAsInt("CITATION_API_TIMEOUT_SECONDS", 45, log)
	return CitationAPIConfig{
		BaseURL: strings.TrimSpace(utils.GetEnv("CITATION_API_URL", "", log)),
		APIKey:  strings.TrimSpace(utils.GetEnv("CITATION_API_KEY", "", log)),
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
}

type citationAPIClient struct {
	log        *logger.Logger
	cfg        CitationAPIConfig
	httpClient *http.Client
}

func NewCitationAPIClient(log *logger.Logger, cfg CitationAPIConfig) (CitationChecker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing CITATION_API_URL")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}

	return &citationAPIClient{
		log:        log.With("client", "CitationAPIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type checkWireRequest struct {
	Query                         string `json:"query"`
	Domain                        string `json:"domain"`
	UserID                        string `json:"user_id"`
	Engine                        string `json:"engine"`
	IncludeCompetitorAnalysis     bool   `json:"include_competitor_analysis"`
	IncludeImprovementSuggestions bool   `json:"include_improvement_suggestions"`
}

// checkWireResponse accepts both the current snake_case field names and the
// camelCase names older deployments of the check service still emit.
type checkWireResponse struct {
	IsCited                *bool               `json:"is_cited"`
	IsCitedCamel           *bool               `json:"isCited"`
	CitationPosition       *int                `json:"citation_position"`
	CitationPositionCamel  *int                `json:"citationPosition"`
	AIAnswer               *string             `json:"ai_answer"`
	AIAnswerCamel          *string             `json:"aiAnswer"`
	CitedSources           []types.CitedSource `json:"cited_sources"`
	CitedSourcesCamel      []types.CitedSource `json:"citedSources"`
	Recommendations        string              `json:"recommendations"`
	Engine                 string              `json:"engine"`
}

func (w *checkWireResponse) toResult(requested types.AnswerEngine) *CheckResult {
	out := &CheckResult{Engine: requested, Recommendations: w.Recommendations}
	if w.Engine != "" {
		out.Engine = types.AnswerEngine(w.Engine)
	}
	if w.IsCited != nil {
		out.IsCited = *w.IsCited
	} else if w.IsCitedCamel != nil {
		out.IsCited = *w.IsCitedCamel
	}
	if w.CitationPosition != nil {
		out.CitationPosition = *w.CitationPosition
	} else if w.CitationPositionCamel != nil {
		out.CitationPosition = *w.CitationPositionCamel
	}
	if w.AIAnswer != nil {
		out.AnswerText = *w.AIAnswer
	} else if w.AIAnswerCamel != nil {
		out.AnswerText = *w.AIAnswerCamel
	}
	if len(w.CitedSources) > 0 {
		out.CitedSources = w.CitedSources
	} else if len(w.CitedSourcesCamel) > 0 {
		out.CitedSources = w.CitedSourcesCamel
	}
	return out
}

func (c *citationAPIClient) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("citation client unavailable")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("citation check: query required")
	}
	if strings.TrimSpace(req.Domain) == "" {
		return nil, fmt.Errorf("citation check: domain required")
	}

	wire := checkWireRequest{
		Query:  req.Query,
		Domain: req.Domain,
		UserID: req.UserID.String(),
		Engine: string(req.Engine),
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/citations/check", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := strings.TrimSpace(string(raw))
		if len(body) > 500 {
			body = body[:500] + "..."
		}
		return nil, fmt.Errorf("citation check http %d: %s", resp.StatusCode, body)
	}

	var decoded checkWireResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("citation check: bad response body: %w", err)
	}

	return decoded.toResult(req.Engine), nil
}
