package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/service/slack"
)

type UseCases struct {
	repo          interfaces.Repository
	registry      *model.WorkspaceRegistry
	slackService  slack.Service
	slackChannel  string
	baseURL       string
	clock         func() time.Time
	exportOptions []ExportOption

	Action    *ActionUseCase
	Checklist *ChecklistUseCase
	Movement  *MovementRecorder
	Ordering  *OrderingEngine
	Export    *ExportUseCase
}

type Option func(*UseCases)

// WithWorkspaceRegistry sets the registry resolving the board of each workspace.
// Defaults to the default board for every workspace.
func WithWorkspaceRegistry(registry *model.WorkspaceRegistry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

// WithSlackNotification posts accepted status changes to channelID
func WithSlackNotification(service slack.Service, channelID string) Option {
	return func(uc *UseCases) {
		uc.slackService = service
		uc.slackChannel = channelID
	}
}

// WithBaseURL sets the frontend URL used for links in notifications
func WithBaseURL(baseURL string) Option {
	return func(uc *UseCases) {
		uc.baseURL = baseURL
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithExportOptions configures the movement export
func WithExportOptions(opts ...ExportOption) Option {
	return func(uc *UseCases) {
		uc.exportOptions = append(uc.exportOptions, opts...)
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		clock: func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.registry == nil {
		uc.registry = model.NewWorkspaceRegistry(model.WithFallbackBoard(model.DefaultBoard()))
	}

	var notifier movementNotifier = nopNotifier{}
	if uc.slackService != nil && uc.slackChannel != "" {
		notifier = newSlackNotifier(uc.slackService, uc.slackChannel, uc.baseURL)
	}

	uc.Ordering = NewOrderingEngine(uc.registry, uc.clock)
	uc.Movement = NewMovementRecorder(repo, uc.clock)
	uc.Action = NewActionUseCase(repo, uc.registry, uc.Ordering, uc.Movement, notifier, uc.clock)
	uc.Checklist = NewChecklistUseCase(repo, uc.clock)
	uc.Export = NewExportUseCase(repo, uc.exportOptions...)

	return uc
}

// Registry returns the workspace registry in use
func (uc *UseCases) Registry() *model.WorkspaceRegistry {
	return uc.registry
}

// runTx runs fn in one unit of work and classifies any failure
func runTx(ctx context.Context, repo interfaces.Repository, fn interfaces.TxFunc) error {
	if err := repo.RunTransaction(ctx, fn); err != nil {
		return classify(err, "transaction failed")
	}
	return nil
}
