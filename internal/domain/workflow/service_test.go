package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/domain/workflow"
	"github.com/PhucDaizz/parkledger/internal/event"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) IsOccupied(ctx context.Context, plateKey string) (bool, error) {
	args := m.Called(ctx, plateKey)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) RecordEntry(ctx context.Context, plateKey, imagePath string) (int64, error) {
	args := m.Called(ctx, plateKey, imagePath)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) RecordExit(ctx context.Context, plateKey string) (int64, error) {
	args := m.Called(ctx, plateKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) AttachImage(ctx context.Context, sessionID int64, imagePath string) error {
	args := m.Called(ctx, sessionID, imagePath)
	return args.Error(0)
}

type fakeImageSaver struct {
	path string
	err  error
}

func (f *fakeImageSaver) Save(plateKey string, jpeg []byte) (string, error) {
	return f.path, f.err
}

func TestConfirmUnoccupiedRecordsEntry(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "30A-111.11").Return(false, nil)
	led.On("RecordEntry", mock.Anything, "30A-111.11", "").Return(int64(1), nil)

	svc := workflow.NewService(led, nil, nil, nil)
	result, err := svc.Confirm(context.Background(), "30A-111.11", nil)
	require.NoError(t, err)
	require.Equal(t, workflow.ActionEntered, result.Action)
	require.Equal(t, int64(1), result.SessionID)
	require.Equal(t, "30A-111.11", result.PlateKey)
}

func TestConfirmOccupiedRecordsExit(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "30A-111.11").Return(true, nil)
	led.On("RecordExit", mock.Anything, "30A-111.11").Return(int64(4), nil)

	svc := workflow.NewService(led, nil, nil, nil)
	result, err := svc.Confirm(context.Background(), "30A-111.11", nil)
	require.NoError(t, err)
	require.Equal(t, workflow.ActionExited, result.Action)
	require.Equal(t, int64(4), result.SessionID)
}

func TestConfirmNormalizesBeforeDeciding(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "51f-123.45").Return(false, nil)
	led.On("RecordEntry", mock.Anything, "51f-123.45", "").Return(int64(2), nil)

	svc := workflow.NewService(led, nil, nil, nil)
	result, err := svc.Confirm(context.Background(), "  51f-123.45!! ", nil)
	require.NoError(t, err)
	require.Equal(t, "51f-123.45", result.PlateKey)
}

func TestConfirmEmptyPlateIsValidationError(t *testing.T) {
	led := &mockLedger{}
	svc := workflow.NewService(led, nil, nil, nil)

	_, err := svc.Confirm(context.Background(), "!@#$", nil)
	require.ErrorIs(t, err, ledger.ErrValidation)
	led.AssertNotCalled(t, "IsOccupied")
}

func TestConfirmSurfacesLedgerErrorsUnchanged(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "30A-111.11").Return(false, nil)
	led.On("RecordEntry", mock.Anything, "30A-111.11", "").
		Return(int64(0), ledger.ErrAlreadyOccupied)

	svc := workflow.NewService(led, nil, nil, nil)
	_, err := svc.Confirm(context.Background(), "30A-111.11", nil)
	require.ErrorIs(t, err, ledger.ErrAlreadyOccupied)
}

func TestConfirmEntryPassesSavedImagePath(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "30A-111.11").Return(false, nil)
	led.On("RecordEntry", mock.Anything, "30A-111.11", "plates/x.jpg").Return(int64(3), nil)

	svc := workflow.NewService(led, &fakeImageSaver{path: "plates/x.jpg"}, nil, nil)
	_, err := svc.Confirm(context.Background(), "30A-111.11", []byte{0xff, 0xd8})
	require.NoError(t, err)
	led.AssertExpectations(t)
}

func TestConfirmProceedsWhenImageSaveFails(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "30A-111.11").Return(false, nil)
	led.On("RecordEntry", mock.Anything, "30A-111.11", "").Return(int64(3), nil)

	var warned bool
	sink := event.SinkFunc(func(e event.Event) {
		if e.Severity == event.SeverityWarn {
			warned = true
		}
	})

	svc := workflow.NewService(led, &fakeImageSaver{err: errors.New("disk full")}, sink, nil)
	result, err := svc.Confirm(context.Background(), "30A-111.11", []byte{0xff, 0xd8})
	require.NoError(t, err)
	require.Equal(t, workflow.ActionEntered, result.Action)
	require.True(t, warned)
}

func TestConfirmExitAttachFailureIsAdvisory(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "30A-111.11").Return(true, nil)
	led.On("RecordExit", mock.Anything, "30A-111.11").Return(int64(5), nil)
	led.On("AttachImage", mock.Anything, int64(5), "plates/x.jpg").
		Return(ledger.ErrImageAttach)

	svc := workflow.NewService(led, &fakeImageSaver{path: "plates/x.jpg"}, nil, nil)
	result, err := svc.Confirm(context.Background(), "30A-111.11", []byte{0xff, 0xd8})
	require.NoError(t, err)
	require.Equal(t, workflow.ActionExited, result.Action)
}

func TestConfirmEmitsOutcomeEvents(t *testing.T) {
	led := &mockLedger{}
	led.On("IsOccupied", mock.Anything, "30A-111.11").Return(false, nil)
	led.On("RecordEntry", mock.Anything, "30A-111.11", "").Return(int64(1), nil)

	sink := event.NewChannelSink(4)
	svc := workflow.NewService(led, nil, sink, nil)

	_, err := svc.Confirm(context.Background(), "30A-111.11", nil)
	require.NoError(t, err)

	e := <-sink.Events()
	require.Equal(t, event.SeverityInfo, e.Severity)
	require.Contains(t, e.Message, "30A-111.11")
}
