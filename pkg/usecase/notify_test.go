package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/async"
	goslack "github.com/slack-go/slack"
)

type postedMessage struct {
	channelID string
	blocks    []goslack.Block
	text      string
}

type fakeSlack struct {
	mu      sync.Mutex
	posted  []postedMessage
	names   map[string]string
	postErr error
}

func (f *fakeSlack) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, postedMessage{channelID: channelID, blocks: blocks, text: text})
	return "1700000000.000100", nil
}

func (f *fakeSlack) GetUserName(ctx context.Context, userID string) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", errors.New("user_not_found")
	}
	return name, nil
}

func (f *fakeSlack) messages() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedMessage(nil), f.posted...)
}

func TestMoveActionNotifiesSlack(t *testing.T) {
	svc := &fakeSlack{names: map[string]string{"U1": "Alice"}}
	uc, _ := setupUseCases(t,
		usecase.WithSlackNotification(svc, "C123"),
		usecase.WithBaseURL("https://board.example.com"),
	)
	ctx := context.Background()

	action := createAction(t, uc, "Ship it")
	other := createAction(t, uc, "Other")

	_, err := uc.Action.MoveAction(ctx, testWorkspaceID, action.Action.ID, types.ActionStatusInProgress, 0, "U1", "kicking off")
	gt.NoError(t, err).Required()

	// Reorders within a column are not status changes
	_, err = uc.Action.MoveAction(ctx, testWorkspaceID, other.Action.ID, types.ActionStatusTodo, 5, "U1", "")
	gt.NoError(t, err).Required()

	// Unknown users fall back to the raw ID
	_, err = uc.Action.MoveAction(ctx, testWorkspaceID, action.Action.ID, types.ActionStatusDone, 0, "U9", "")
	gt.NoError(t, err).Required()
	async.Wait()

	msgs := svc.messages()
	gt.Array(t, msgs).Length(2).Required()

	var first, second postedMessage
	for _, m := range msgs {
		if strings.Contains(m.text, "IN_PROGRESS to DONE") {
			second = m
		} else {
			first = m
		}
	}

	gt.Value(t, first.channelID).Equal("C123")
	gt.Value(t, first.text).Equal(`Alice moved "Ship it" from TODO to IN_PROGRESS`)
	gt.Array(t, first.blocks).Length(2).Required()
	section, ok := first.blocks[0].(*goslack.SectionBlock)
	gt.Bool(t, ok).True()
	gt.String(t, section.Text.Text).Contains("https://board.example.com/ws/" + testWorkspaceID + "/actions/" + action.Action.ID.String())

	gt.Value(t, second.text).Equal(`U9 moved "Ship it" from IN_PROGRESS to DONE`)
}

func TestMoveActionSucceedsWhenSlackFails(t *testing.T) {
	svc := &fakeSlack{postErr: errors.New("channel_not_found")}
	uc, _ := setupUseCases(t, usecase.WithSlackNotification(svc, "C123"))
	ctx := context.Background()

	action := createAction(t, uc, "a")
	result, err := uc.Action.MoveAction(ctx, testWorkspaceID, action.Action.ID, types.ActionStatusDone, 0, "", "")
	gt.NoError(t, err).Required()
	gt.Value(t, result.Movement).NotNil()
	async.Wait()

	gt.Array(t, svc.messages()).Length(0)
}
