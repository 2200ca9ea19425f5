package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/catnav/internal/config"
	"storefront/catnav/internal/domain/task"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const StreamPrefix = "catnav:stream:"

// Message is a task read from a stream, not yet acknowledged.
type Message struct {
	ID       string
	TaskType string
	Data     []byte
}

type Queue interface {
	AddTask(ctx context.Context, t task.Task) (string, error)
	ReadTask(ctx context.Context, consumer, taskType string) (*Message, error)
	ClaimIdle(ctx context.Context, consumer, taskType string) (*Message, error)
	AckTask(ctx context.Context, taskType, msgID string) error
	EnsureStreamsExist(ctx context.Context) error
}

type RedisQueue struct {
	redisClient *redis.Client
	groupName   string
	minIdleTime time.Duration
	block       time.Duration
}

func NewRedisQueue(ctx context.Context, redisClient *redis.Client, cfg config.RedisConfig) (Queue, error) {
	q := &RedisQueue{
		redisClient: redisClient,
		groupName:   cfg.ConsumerGroup,
		minIdleTime: time.Duration(cfg.MinIdleTime) * time.Second,
		block:       5 * time.Second,
	}

	if err := q.EnsureStreamsExist(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure streams exist: %w", err)
	}

	return q, nil
}

// StreamName maps a task type onto its stream key.
func StreamName(taskType string) string {
	return StreamPrefix + taskType
}

func (q *RedisQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	taskType := t.TaskType()
	stream := StreamName(taskType)

	value, err := t.TaskValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	id, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"task_type": taskType,
			"task_data": string(value),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add task to stream %s: %w", stream, err)
	}

	log.Debugf("Queued %s as %s", taskType, id)
	return id, nil
}

// ReadTask blocks for a short while and returns nil when nothing arrived.
func (q *RedisQueue) ReadTask(ctx context.Context, consumer, taskType string) (*Message, error) {
	stream := StreamName(taskType)

	result, err := q.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    1,
		Block:    q.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream %s: %w", stream, err)
	}

	if len(result) == 0 || len(result[0].Messages) == 0 {
		return nil, nil
	}
	return toMessage(result[0].Messages[0]), nil
}

// ClaimIdle takes over one message another consumer left pending for longer
// than the configured idle time.
func (q *RedisQueue) ClaimIdle(ctx context.Context, consumer, taskType string) (*Message, error) {
	stream := StreamName(taskType)

	messages, _, err := q.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    q.groupName,
		Consumer: consumer,
		MinIdle:  q.minIdleTime,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to claim from stream %s: %w", stream, err)
	}

	if len(messages) == 0 {
		return nil, nil
	}
	return toMessage(messages[0]), nil
}

func (q *RedisQueue) AckTask(ctx context.Context, taskType, msgID string) error {
	stream := StreamName(taskType)
	if err := q.redisClient.XAck(ctx, stream, q.groupName, msgID).Err(); err != nil {
		return fmt.Errorf("failed to ack %s on %s: %w", msgID, stream, err)
	}
	return nil
}

// EnsureStreamsExist creates every task stream together with the consumer group.
func (q *RedisQueue) EnsureStreamsExist(ctx context.Context) error {
	log.Info("🔧 Preparing import streams...")

	for _, taskType := range task.TaskTypes {
		stream := StreamName(taskType)

		err := q.redisClient.XGroupCreateMkStream(ctx, stream, q.groupName, "0").Err()
		if err != nil && !isBusyGroup(err) {
			return fmt.Errorf("failed to create consumer group for %s: %w", taskType, err)
		}

		log.Infof("✅ Stream %s ready for group %s", stream, q.groupName)
	}

	return nil
}

func isBusyGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func toMessage(msg redis.XMessage) *Message {
	taskType, _ := msg.Values["task_type"].(string)
	data, _ := msg.Values["task_data"].(string)
	return &Message{
		ID:       msg.ID,
		TaskType: taskType,
		Data:     []byte(data),
	}
}
