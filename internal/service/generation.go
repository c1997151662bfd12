package service

import (
	"context"
	"log/slog"

	"github.com/Gopi-techy/SkillSlate/internal/ai"
	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/document"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/repository"
)

// Generator produces portfolio content. Implemented by ai.Client; tests use
// a canned fake.
type Generator interface {
	FromPrompt(ctx context.Context, prompt, template string) (*model.PortfolioData, error)
	FromResume(ctx context.Context, resumeText, template string) (*model.PortfolioData, error)
	Refine(ctx context.Context, data *model.PortfolioData, request string, history []model.ChatMessage) (*model.PortfolioData, error)
	ToHTML(ctx context.Context, data *model.PortfolioData, template string) (string, error)
}

// GenerationService turns prompts and resumes into stored draft portfolios.
type GenerationService struct {
	generator  Generator
	portfolios repository.PortfolioRepository
	log        *slog.Logger
}

func NewGenerationService(generator Generator, portfolios repository.PortfolioRepository, log *slog.Logger) *GenerationService {
	return &GenerationService{generator: generator, portfolios: portfolios, log: log}
}

// GenerateInput is one generation request: either Prompt, or a resume file
// (Filename + Content) when Type is "resume".
type GenerateInput struct {
	Type     string // "prompt" or "resume"
	Prompt   string
	Filename string
	Content  []byte
	Template string
}

// GenerateResult is the stored draft plus the estimate that was quoted.
type GenerateResult struct {
	Portfolio        *model.Portfolio
	EstimatedSeconds int
}

// Generate runs the full pipeline: extract (for resumes), generate the data
// document, render HTML, and store the result as a draft.
func (s *GenerationService) Generate(ctx context.Context, userID string, in GenerateInput) (*GenerateResult, error) {
	template := in.Template
	if template == "" {
		template = "modern"
	}
	estimated := ai.EstimateSeconds(in.Type, len(in.Content) > 0)

	data, err := s.buildData(ctx, in, template)
	if err != nil {
		return nil, err
	}

	html, err := s.generator.ToHTML(ctx, data, template)
	if err != nil {
		return nil, err
	}

	p, err := s.store(ctx, userID, template, data, html)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{Portfolio: p, EstimatedSeconds: estimated}, nil
}

// ProgressEvent is one step of a streamed generation.
type ProgressEvent struct {
	Step      string           `json:"step"`
	Progress  int              `json:"progress"`
	Message   string           `json:"message"`
	Portfolio *model.Portfolio `json:"portfolio,omitempty"`
}

// GenerateWithProgress is Generate with step-by-step events emitted through
// emit. Failures surface as a terminal "error" event as well as the returned
// error, so streaming clients see the reason without parsing the transport
// error.
func (s *GenerationService) GenerateWithProgress(ctx context.Context, userID string, in GenerateInput, emit func(ProgressEvent)) error {
	fail := func(err error) error {
		emit(ProgressEvent{Step: "error", Progress: 0, Message: err.Error()})
		return err
	}

	template := in.Template
	if template == "" {
		template = "modern"
	}

	emit(ProgressEvent{Step: "initialize", Progress: 0, Message: "Starting portfolio generation..."})
	emit(ProgressEvent{Step: "parsing", Progress: 10, Message: "Processing your input..."})

	var data *model.PortfolioData
	var err error
	if in.Type == "resume" && len(in.Content) > 0 {
		emit(ProgressEvent{Step: "parsing", Progress: 20, Message: "Extracting text from resume..."})
		text, err := document.Extract(in.Filename, in.Content)
		if err != nil {
			return fail(err)
		}
		emit(ProgressEvent{Step: "analyzing", Progress: 30, Message: "AI is analyzing your information..."})
		emit(ProgressEvent{Step: "structuring", Progress: 50, Message: "Creating portfolio structure..."})
		data, err = s.generator.FromResume(ctx, text, template)
		if err != nil {
			return fail(err)
		}
	} else {
		if in.Prompt == "" {
			return fail(apperror.ValidationFailed("prompt", "Prompt is required"))
		}
		emit(ProgressEvent{Step: "analyzing", Progress: 30, Message: "AI is analyzing your information..."})
		emit(ProgressEvent{Step: "structuring", Progress: 50, Message: "Creating portfolio structure..."})
		data, err = s.generator.FromPrompt(ctx, in.Prompt, template)
		if err != nil {
			return fail(err)
		}
	}

	emit(ProgressEvent{Step: "designing", Progress: 70, Message: "Designing your portfolio website..."})
	html, err := s.generator.ToHTML(ctx, data, template)
	if err != nil {
		return fail(err)
	}

	emit(ProgressEvent{Step: "finalizing", Progress: 90, Message: "Finalizing your portfolio..."})
	p, err := s.store(ctx, userID, template, data, html)
	if err != nil {
		return fail(err)
	}

	emit(ProgressEvent{Step: "complete", Progress: 100, Message: "Portfolio created successfully!", Portfolio: p})
	return nil
}

// Refine applies a change request to a stored portfolio and re-renders its
// HTML.
func (s *GenerationService) Refine(ctx context.Context, userID, portfolioID, request string, history []model.ChatMessage) (*model.Portfolio, error) {
	if request == "" {
		return nil, apperror.ValidationFailed("request", "Request is required")
	}

	p, err := s.portfolios.GetOwned(ctx, portfolioID, userID)
	if err != nil {
		return nil, err
	}
	if p.Data == nil {
		return nil, apperror.ValidationFailed("", "Portfolio has no generated data to refine")
	}

	updated, err := s.generator.Refine(ctx, p.Data, request, history)
	if err != nil {
		return nil, err
	}
	html, err := s.generator.ToHTML(ctx, updated, p.Template)
	if err != nil {
		return nil, err
	}

	if err := s.portfolios.UpdateContent(ctx, p.ID, updated, html, nil); err != nil {
		return nil, err
	}

	p.Data = updated
	p.HTML = html
	s.log.Info("portfolio refined", "portfolio_id", p.ID, "user_id", userID)
	return p, nil
}

// Preview returns the stored HTML of a portfolio the user owns.
func (s *GenerationService) Preview(ctx context.Context, userID, portfolioID string) (string, error) {
	p, err := s.portfolios.GetOwned(ctx, portfolioID, userID)
	if err != nil {
		return "", err
	}
	if p.HTML == "" {
		return "", apperror.NotFound("Portfolio HTML")
	}
	return p.HTML, nil
}

func (s *GenerationService) buildData(ctx context.Context, in GenerateInput, template string) (*model.PortfolioData, error) {
	if in.Type == "resume" && len(in.Content) > 0 {
		if err := document.ValidateSize(int64(len(in.Content))); err != nil {
			return nil, err
		}
		text, err := document.Extract(in.Filename, in.Content)
		if err != nil {
			return nil, err
		}
		return s.generator.FromResume(ctx, text, template)
	}

	if in.Prompt == "" {
		return nil, apperror.ValidationFailed("prompt", "Prompt is required")
	}
	return s.generator.FromPrompt(ctx, in.Prompt, template)
}

func (s *GenerationService) store(ctx context.Context, userID, template string, data *model.PortfolioData, html string) (*model.Portfolio, error) {
	name := data.PersonalInfo.Name
	if name == "" {
		name = "Untitled Portfolio"
	}

	p := &model.Portfolio{
		UserID:   userID,
		Name:     name,
		Template: template,
		Status:   model.StatusDraft,
		Data:     data,
		HTML:     html,
	}
	if err := s.portfolios.CreatePortfolio(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("portfolio generated", "portfolio_id", p.ID, "user_id", userID)
	return p, nil
}
