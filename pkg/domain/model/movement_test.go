package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

func TestMovementCursor_EncodeDecode(t *testing.T) {
	c := &model.MovementCursor{
		CreatedAt: time.Date(2026, 5, 4, 3, 2, 1, 123456789, time.UTC),
		ID:        model.NewMovementID(),
	}

	decoded, err := model.DecodeMovementCursor(c.Encode())
	gt.NoError(t, err).Required()
	gt.Bool(t, decoded.CreatedAt.Equal(c.CreatedAt)).True()
	gt.Value(t, decoded.ID).Equal(c.ID)

	empty, err := model.DecodeMovementCursor("")
	gt.NoError(t, err)
	gt.Value(t, empty).Nil()

	_, err = model.DecodeMovementCursor("%%%")
	gt.Value(t, err).NotNil()
}

func TestMovementCursor_After(t *testing.T) {
	base := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	cursor := &model.MovementCursor{CreatedAt: base, ID: "m-5"}

	gt.Bool(t, cursor.After(&model.ActionMovement{ID: "m-9", CreatedAt: base.Add(-time.Second)})).True()
	gt.Bool(t, cursor.After(&model.ActionMovement{ID: "m-4", CreatedAt: base})).True()
	gt.Bool(t, cursor.After(&model.ActionMovement{ID: "m-5", CreatedAt: base})).False()
	gt.Bool(t, cursor.After(&model.ActionMovement{ID: "m-1", CreatedAt: base.Add(time.Second)})).False()

	var none *model.MovementCursor
	gt.Bool(t, none.After(&model.ActionMovement{ID: "m-1", CreatedAt: base})).True()
}
