package worker

import (
	"context"

	"railway-reservation/internal/model"
	"railway-reservation/internal/queue"
	"railway-reservation/pkg/logger"

	"go.uber.org/zap"
)

// JournalSink 記錄一次階梯異動
type JournalSink interface {
	Record(ctx context.Context, event *model.LadderEvent) error
}

// LogJournal 以結構化日誌寫入 journal component
type LogJournal struct {
	log *zap.Logger
}

func NewLogJournal() *LogJournal {
	return &LogJournal{log: logger.WithComponent("journal")}
}

func (j *LogJournal) Record(ctx context.Context, event *model.LadderEvent) error {
	fields := []zap.Field{
		zap.String("event", string(event.Type)),
		zap.String("pnr", event.PNR),
		zap.Time("occurred_at", event.OccurredAt),
	}
	if event.From != "" {
		fields = append(fields, zap.String("from", string(event.From)))
	}
	if event.To != "" {
		fields = append(fields, zap.String("to", string(event.To)))
	}
	if event.BerthNumber != nil {
		fields = append(fields, zap.Int("berth_number", *event.BerthNumber))
	}
	if event.RACNumber != nil {
		fields = append(fields, zap.Int("rac_number", *event.RACNumber))
	}
	if event.WaitingNumber != nil {
		fields = append(fields, zap.Int("waiting_list_number", *event.WaitingNumber))
	}
	j.log.Info("ladder movement", fields...)
	return nil
}

type LadderWorker interface {
	// 訂閱階梯異動隊列
	Start(ctx context.Context) error
	// Wait 等待訂閱結束（ctx 取消後）
	Wait()
}

type LadderWorkerImpl struct {
	sink  JournalSink
	queue queue.LadderQueue
	done  chan struct{}
}

func NewLadderWorker(sink JournalSink, queue queue.LadderQueue) LadderWorker {
	return &LadderWorkerImpl{
		sink:  sink,
		queue: queue,
		done:  make(chan struct{}),
	}
}

func (w *LadderWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeEvents(ctx)
	if err != nil {
		close(w.done)
		return err
	}

	go func() {
		defer close(w.done)
		for msg := range msgs {
			if err := w.sink.Record(ctx, msg.Data); err != nil {
				logger.WithComponent("worker").Warn("journal record failed, requeue",
					zap.String("pnr", msg.Data.PNR), zap.Error(err))
				msg.Nack(true)
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (w *LadderWorkerImpl) Wait() {
	<-w.done
}
