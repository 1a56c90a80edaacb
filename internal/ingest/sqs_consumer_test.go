package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	mu       sync.Mutex
	batches  [][]types.Message
	receives int
	failNext error
	deleted  []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receives++
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	if len(f.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type updaterFunc func(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error)

func (f updaterFunc) UpdateSlotStatus(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error) {
	return f(ctx, dto)
}

func message(id, body string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String("rh-" + id),
		Body:          aws.String(body),
	}
}

func TestHandle_AppliedMessageIsDeleted(t *testing.T) {
	client := &fakeSQS{}
	var got domain.UpdateSlotStatusDTO
	c := NewSlotStatusConsumer(client, "queue", updaterFunc(func(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error) {
		got = dto
		return &domain.ParkingLot{ID: 4}, nil
	}))

	c.handle(context.Background(), message("1", `{"parkingLotId": 4, "filledSlots": [1, 2], "freeSlots": [3]}`))

	assert.Equal(t, []string{"rh-1"}, client.deletedHandles())
	require.True(t, got.ParkingLotID.Valid)
	assert.EqualValues(t, 4, got.ParkingLotID.Int64)
	require.NotNil(t, got.FilledSlots)
	assert.Equal(t, []int{1, 2}, *got.FilledSlots)
	assert.Equal(t, []int{3}, *got.FreeSlots)
}

func TestHandle_RejectedMessagesAreDeleted(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{name: "malformed json", body: `{"parkingLotId": "x"`},
		{name: "validation", body: `{}`, err: &service.ValidationError{Field: "parkingLotId", Message: "is required"}},
		{name: "unknown lot", body: `{"parkingLotId": 9, "filledSlots": [], "freeSlots": []}`, err: &service.NotFoundError{Key: "with id 9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSQS{}
			c := NewSlotStatusConsumer(client, "queue", updaterFunc(func(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error) {
				return nil, tt.err
			}))

			c.handle(context.Background(), message("m", tt.body))

			assert.Equal(t, []string{"rh-m"}, client.deletedHandles())
		})
	}
}

func TestHandle_StoreFailureKeepsMessage(t *testing.T) {
	client := &fakeSQS{}
	c := NewSlotStatusConsumer(client, "queue", updaterFunc(func(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error) {
		return nil, &service.StoreError{Op: "update slot statuses", Err: errors.New("connection reset")}
	}))

	c.handle(context.Background(), message("m", `{"parkingLotId": 1, "filledSlots": [1], "freeSlots": []}`))

	assert.Empty(t, client.deletedHandles())
}

func TestHandle_NilBodyIsDeleted(t *testing.T) {
	client := &fakeSQS{}
	c := NewSlotStatusConsumer(client, "queue", updaterFunc(func(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error) {
		t.Fatal("updater must not be called")
		return nil, nil
	}))

	c.handle(context.Background(), types.Message{MessageId: aws.String("e"), ReceiptHandle: aws.String("rh-e")})

	assert.Equal(t, []string{"rh-e"}, client.deletedHandles())
}

func TestStart_ProcessesUntilCancelled(t *testing.T) {
	client := &fakeSQS{
		failNext: errors.New("throttled"),
		batches: [][]types.Message{
			{message("a", `{"parkingLotId": 1, "filledSlots": [1], "freeSlots": []}`)},
			{message("b", `{"parkingLotId": 1, "filledSlots": [], "freeSlots": [1]}`)},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	applied := 0
	c := NewSlotStatusConsumer(client, "queue", updaterFunc(func(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error) {
		mu.Lock()
		defer mu.Unlock()
		applied++
		return &domain.ParkingLot{ID: 1}, nil
	}))
	c.retryDelay = time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(client.deletedHandles()) == 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
	assert.Equal(t, []string{"rh-a", "rh-b"}, client.deletedHandles())
	mu.Lock()
	assert.Equal(t, 2, applied)
	mu.Unlock()
}
