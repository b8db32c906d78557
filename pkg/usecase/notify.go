package usecase

import (
	"context"
	"fmt"

	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/service/slack"
	"github.com/secmon-lab/actionboard/pkg/utils/errutil"
	goslack "github.com/slack-go/slack"
)

// movementNotifier is told about accepted status changes after commit.
// Failures never affect the operation that caused them.
type movementNotifier interface {
	NotifyMovement(ctx context.Context, workspaceID string, action *model.Action, movement *model.ActionMovement) error
}

type nopNotifier struct{}

func (nopNotifier) NotifyMovement(context.Context, string, *model.Action, *model.ActionMovement) error {
	return nil
}

type slackNotifier struct {
	service   slack.Service
	channelID string
	baseURL   string
}

func newSlackNotifier(service slack.Service, channelID, baseURL string) *slackNotifier {
	return &slackNotifier{service: service, channelID: channelID, baseURL: baseURL}
}

func (n *slackNotifier) NotifyMovement(ctx context.Context, workspaceID string, action *model.Action, movement *model.ActionMovement) error {
	actor := movement.ActorID
	if actor != "" {
		if name, err := n.service.GetUserName(ctx, actor); err != nil {
			// Fall back to the raw ID
			_ = errutil.Handle(ctx, err, "failed to resolve actor name")
		} else if name != "" {
			actor = name
		}
	}
	if actor == "" {
		actor = "someone"
	}

	actionURL := ""
	if n.baseURL != "" {
		actionURL = fmt.Sprintf("%s/ws/%s/actions/%s", n.baseURL, workspaceID, action.ID)
	}

	blocks := buildMovementMessageBlocks(action, movement, actor, actionURL)
	text := fmt.Sprintf("%s moved %q from %s to %s", actor, action.Title, movement.FromStatus, movement.ToStatus)
	if _, err := n.service.PostMessage(ctx, n.channelID, blocks, text); err != nil {
		return err
	}
	return nil
}

func buildMovementMessageBlocks(action *model.Action, movement *model.ActionMovement, actor, actionURL string) []goslack.Block {
	title := action.Title
	if actionURL != "" {
		title = fmt.Sprintf("<%s|%s>", actionURL, action.Title)
	}

	fields := []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*From:*\n%s", movement.FromStatus), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*To:*\n%s", movement.ToStatus), false, false),
	}

	blocks := []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*%s* moved %s", actor, title), false, false),
			fields, nil,
		),
	}

	if movement.Notes != "" {
		blocks = append(blocks, goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType, movement.Notes, false, false),
		))
	}
	if action.IsBlocked && action.BlockedReason != nil {
		blocks = append(blocks, goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType, ":no_entry: blocked: "+*action.BlockedReason, false, false),
		))
	}

	return blocks
}
