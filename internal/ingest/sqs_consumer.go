package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/logger"
	"parking_tracker/internal/metrics"
	"parking_tracker/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/sirupsen/logrus"
)

const (
	maxMessagesPerPoll = 10
	waitTimeSeconds    = 20
	visibilityTimeout  = 60
	receiveRetryDelay  = 5 * time.Second
)

// sqsAPI is the subset of *sqs.Client used by the consumer.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type slotStatusUpdater interface {
	UpdateSlotStatus(ctx context.Context, dto domain.UpdateSlotStatusDTO) (*domain.ParkingLot, error)
}

// SlotStatusConsumer long-polls a queue of update-slot-status payloads and
// applies each one through the upsert service.
type SlotStatusConsumer struct {
	client     sqsAPI
	queueURL   string
	updater    slotStatusUpdater
	retryDelay time.Duration
}

func NewSlotStatusConsumer(client sqsAPI, queueURL string, updater slotStatusUpdater) *SlotStatusConsumer {
	return &SlotStatusConsumer{
		client:     client,
		queueURL:   queueURL,
		updater:    updater,
		retryDelay: receiveRetryDelay,
	}
}

// Start blocks until ctx is cancelled.
func (c *SlotStatusConsumer) Start(ctx context.Context) {
	log := logger.Log.WithField("queue", c.queueURL)
	log.Info("slot status consumer started")
	for {
		if ctx.Err() != nil {
			log.Info("slot status consumer stopped")
			return
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: maxMessagesPerPoll,
			WaitTimeSeconds:     waitTimeSeconds,
			VisibilityTimeout:   visibilityTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.WithError(err).Error("receive message failed")
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
			}
			continue
		}

		for _, msg := range out.Messages {
			c.handle(ctx, msg)
		}
	}
}

func (c *SlotStatusConsumer) handle(ctx context.Context, msg types.Message) {
	log := logger.Log.WithField("message_id", aws.ToString(msg.MessageId))

	if msg.Body == nil {
		log.Warn("empty message body, deleting")
		metrics.SlotQueueMessages.WithLabelValues("rejected").Inc()
		c.delete(ctx, msg.ReceiptHandle)
		return
	}

	var dto domain.UpdateSlotStatusDTO
	if err := json.Unmarshal([]byte(*msg.Body), &dto); err != nil {
		log.WithError(err).Warn("malformed slot status message, deleting")
		metrics.SlotQueueMessages.WithLabelValues("rejected").Inc()
		c.delete(ctx, msg.ReceiptHandle)
		return
	}

	lot, err := c.updater.UpdateSlotStatus(ctx, dto)
	if err != nil {
		var valErr *service.ValidationError
		var nfErr *service.NotFoundError
		if errors.As(err, &valErr) || errors.As(err, &nfErr) {
			log.WithError(err).Warn("slot status message rejected, deleting")
			metrics.SlotQueueMessages.WithLabelValues("rejected").Inc()
			c.delete(ctx, msg.ReceiptHandle)
			return
		}
		log.WithError(err).Error("slot status update failed, leaving message for redelivery")
		metrics.SlotQueueMessages.WithLabelValues("failed").Inc()
		return
	}

	log.WithFields(logrus.Fields{"lot_id": lot.ID}).Debug("slot status message applied")
	metrics.SlotQueueMessages.WithLabelValues("applied").Inc()
	c.delete(ctx, msg.ReceiptHandle)
}

func (c *SlotStatusConsumer) delete(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		logger.Log.Warn("message has no receipt handle, cannot delete")
		return
	}
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		logger.Log.WithError(err).Error("delete message failed")
	}
}
