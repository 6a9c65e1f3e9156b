package agent

import (
	"context"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogProvider lists the names parameters are validated against
type CatalogProvider interface {
	Portfolios(ctx context.Context) []string
	Benchmarks(ctx context.Context) []string
}

// ChatRequest is one user turn plus the history the caller is keeping
type ChatRequest struct {
	Message             string     `json:"message" validate:"required"`
	ConversationHistory []ChatTurn `json:"conversation_history" validate:"dive"`
}

// ChatResponse is the reply to one turn
type ChatResponse struct {
	Response string `json:"response"`
	// Parameters echoes the extracted record while something is still missing
	Parameters   *ParameterRecord        `json:"parameters"`
	Results      *domain.AnalyticsReport `json:"results"`
	ResetHistory bool                    `json:"reset_history"`
}

// Service runs the extract, check and compose pipeline for each chat turn.
// It keeps no state between turns.
type Service struct {
	catalog   CatalogProvider
	extractor *Extractor
	composer  *Composer
	log       zerolog.Logger
}

// NewService creates a new chat service
func NewService(catalog CatalogProvider, extractor *Extractor, composer *Composer, log zerolog.Logger) *Service {
	return &Service{
		catalog:   catalog,
		extractor: extractor,
		composer:  composer,
		log:       log.With().Str("service", "agent").Logger(),
	}
}

// Chat answers a single turn
func (s *Service) Chat(ctx context.Context, req ChatRequest) ChatResponse {
	turnLog := s.log.With().Str("turn_id", uuid.NewString()).Logger()

	portfolios := s.catalog.Portfolios(ctx)
	benchmarks := s.catalog.Benchmarks(ctx)

	params := s.extractor.Extract(ctx, req.Message, req.ConversationHistory)
	missing := Check(params, portfolios, benchmarks)

	turnLog.Info().
		Int("history", len(req.ConversationHistory)).
		Strs("missing", missing).
		Msg("Checked parameters")

	composition := s.composer.Compose(ctx, params, missing, portfolios, benchmarks)

	resp := ChatResponse{
		Response:     composition.Text,
		Results:      composition.Report,
		ResetHistory: composition.ResetHistory,
	}
	if len(missing) > 0 {
		resp.Parameters = &params
	}
	return resp
}
