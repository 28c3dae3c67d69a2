package queue

import (
	"context"
	"errors"

	"railway-reservation/internal/model"
)

var ErrQueueFull = errors.New("ladder queue is full")

type Delivery struct {
	Data *model.LadderEvent
	Ack  func()
	Nack func(requeue bool)
}

type LadderQueue interface {
	// 發送階梯異動事件
	PublishEvent(ctx context.Context, event *model.LadderEvent) error
	// 訂閱階梯異動事件
	SubscribeEvents(ctx context.Context) (<-chan Delivery, error)
}

type LadderQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.LadderEvent
}

func NewLadderQueue(bufferSize int) LadderQueue {
	return &LadderQueueImpl{
		ch: make(chan *model.LadderEvent, bufferSize),
	}
}

// PublishEvent 不阻塞呼叫端；緩衝區滿時回傳 ErrQueueFull
func (q *LadderQueueImpl) PublishEvent(ctx context.Context, event *model.LadderEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *LadderQueueImpl) SubscribeEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Data: event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							select {
							case q.ch <- event:
							default:
							}
						}
					},
				}

				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
