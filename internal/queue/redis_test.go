package queue

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"storefront/catnav/internal/domain/task"
)

func TestStreamName(t *testing.T) {
	assert.Equal(t, "catnav:stream:CategoryRetryTask", StreamName((&task.CategoryRetryTask{}).TaskType()))
}

func TestToMessage(t *testing.T) {
	msg := toMessage(redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"task_type": "CategoryRetryTask",
			"task_data": `{"name":"fashion"}`,
		},
	})

	assert.Equal(t, &Message{ID: "1-0", TaskType: "CategoryRetryTask", Data: []byte(`{"name":"fashion"}`)}, msg)
}

func TestToMessageToleratesForeignEntries(t *testing.T) {
	msg := toMessage(redis.XMessage{ID: "2-0", Values: map[string]interface{}{"init": "dummy"}})

	assert.Equal(t, "2-0", msg.ID)
	assert.Empty(t, msg.TaskType)
	assert.Empty(t, msg.Data)
}

func TestIsBusyGroup(t *testing.T) {
	assert.True(t, isBusyGroup(errors.New("BUSYGROUP Consumer Group name already exists")))
	assert.False(t, isBusyGroup(errors.New("ERR no such key")))
}
