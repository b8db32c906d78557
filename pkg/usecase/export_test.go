package usecase_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/usecase"
)

func TestExportMovements(t *testing.T) {
	uc, _ := setupUseCases(t, usecase.WithExportOptions(usecase.WithExportPageSize(2)))
	ctx := context.Background()

	a := createAction(t, uc, "a")
	b := createAction(t, uc, "b")
	moveBackAndForth(t, uc, a.Action.ID, 3)
	_, err := uc.Action.MoveAction(ctx, testWorkspaceID, b.Action.ID, types.ActionStatusDone, 0, "U2", "shipped")
	gt.NoError(t, err).Required()

	var buf bytes.Buffer
	n, err := uc.Export.ExportMovements(ctx, testWorkspaceID, &buf)
	gt.NoError(t, err).Required()
	gt.Value(t, n).Equal(4)

	type record struct {
		ID          string `json:"id"`
		WorkspaceID string `json:"workspace_id"`
		ActionID    string `json:"action_id"`
		FromStatus  string `json:"from_status"`
		ToStatus    string `json:"to_status"`
		ActorID     string `json:"actor_id"`
		Notes       string `json:"notes"`
	}

	var records []record
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var r record
		gt.NoError(t, json.Unmarshal(scanner.Bytes(), &r)).Required()
		records = append(records, r)
	}
	gt.NoError(t, scanner.Err()).Required()
	gt.Array(t, records).Length(4).Required()

	gt.Value(t, records[0].ActionID).Equal(b.Action.ID.String())
	gt.Value(t, records[0].ToStatus).Equal("DONE")
	gt.Value(t, records[0].Notes).Equal("shipped")
	gt.Value(t, records[0].ActorID).Equal("U2")
	for _, r := range records {
		gt.Value(t, r.WorkspaceID).Equal(testWorkspaceID)
		gt.String(t, r.ID).NotEqual("")
	}
	for _, r := range records[1:] {
		gt.Value(t, r.ActionID).Equal(a.Action.ID.String())
	}

	var empty bytes.Buffer
	n, err = uc.Export.ExportMovements(ctx, "another-ws", &empty)
	gt.NoError(t, err).Required()
	gt.Value(t, n).Equal(0)
	gt.Value(t, empty.Len()).Equal(0)
}
