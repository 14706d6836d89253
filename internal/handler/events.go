package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

// EventQueueName 是排班变更事件队列的名字，由外部协作方消费
const EventQueueName = "schedule_events"

// publishEvent 把排班变更事件发到消息队列。
// 事件只是辅助通道，发布失败不应该让已经落库的提交跟着失败，只记日志。
func (h *Handler) publishEvent(event domain.ScheduleEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("无法序列化排班事件", "type", event.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.eventChannel.PublishWithContext(
		ctx,
		"",
		EventQueueName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	); err != nil {
		slog.Error("无法发布排班事件", "type", event.Type, "resourceID", event.ResourceID, "error", err)
	}
}
