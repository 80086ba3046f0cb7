// Package broadcast раздает обновления инцидентов всем подключенным подписчикам.
// Публикация никогда не блокируется: у каждой подписки своя ограниченная очередь,
// при переполнении из нее вытесняется самое старое событие.
package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/observability"
)

// ErrSubscriptionClosed - подписка отменена или хаб закрыт
var ErrSubscriptionClosed = errors.New("subscription closed")

const (
	DefaultSnapshotSize = 10
	DefaultBufferSize   = 64
)

// EventType - тип события потока
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventUpdate   EventType = "update"
)

// Event несет полное текущее состояние измененных инцидентов
type Event struct {
	Type      EventType          `json:"type"`
	Incidents []*models.Incident `json:"incidents"`
	At        time.Time          `json:"at"`
}

// SnapshotSource отдает последние обновленные инциденты для снимка при подключении
type SnapshotSource interface {
	RecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error)
}

// SnapshotFunc позволяет передать функцию как SnapshotSource
type SnapshotFunc func(ctx context.Context, limit int) ([]*models.Incident, error)

func (f SnapshotFunc) RecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error) {
	return f(ctx, limit)
}

// Hub - реестр подписок
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool

	snapshots    SnapshotSource
	snapshotSize int
	bufferSize   int
	clock        clockwork.Clock
	logger       *logrus.Logger
	metrics      *observability.Metrics
}

func NewHub(snapshots SnapshotSource, snapshotSize, bufferSize int, clock clockwork.Clock, logger *logrus.Logger, metrics *observability.Metrics) *Hub {
	if snapshotSize < 0 {
		snapshotSize = DefaultSnapshotSize
	}
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subs:         make(map[*Subscription]struct{}),
		snapshots:    snapshots,
		snapshotSize: snapshotSize,
		bufferSize:   bufferSize,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
	}
}

// Subscribe регистрирует подписку и кладет в ее очередь снимок последних инцидентов.
// Подписка регистрируется до чтения снимка, поэтому обновления, пришедшие во время
// чтения, не теряются и идут после снимка.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	sub := newSubscription(h, h.bufferSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrSubscriptionClosed
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	h.metrics.HubSubscribers.Inc()

	var recent []*models.Incident
	if h.snapshotSize > 0 {
		var err error
		recent, err = h.snapshots.RecentIncidents(ctx, h.snapshotSize)
		if err != nil {
			h.Unsubscribe(sub)
			return nil, err
		}
		if len(recent) > h.snapshotSize {
			recent = recent[:h.snapshotSize]
		}
	}
	if recent == nil {
		recent = []*models.Incident{}
	}
	sub.prepend(Event{Type: EventSnapshot, Incidents: recent, At: h.clock.Now().UTC()})

	h.logger.WithField("snapshot_size", len(recent)).Debug("Subscriber attached")
	return sub, nil
}

// Publish раздает обновление всем текущим подпискам, не дожидаясь читателей
func (h *Hub) Publish(incident *models.Incident) {
	event := Event{Type: EventUpdate, Incidents: []*models.Incident{incident}, At: h.clock.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.push(event) {
			h.metrics.HubEventsDropped.Inc()
		}
	}
	h.metrics.HubEventsPublished.Inc()
}

// Unsubscribe освобождает подписку; повторный вызов ничего не делает
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	if ok {
		h.metrics.HubSubscribers.Dec()
		sub.close()
	}
}

// Close закрывает все подписки; новые подписки после этого не принимаются
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.closed = true
	h.mu.Unlock()

	for sub := range subs {
		h.metrics.HubSubscribers.Dec()
		sub.close()
	}
}

// Len - количество активных подписок
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Subscription - ограниченная очередь событий одного подписчика
type Subscription struct {
	hub *Hub

	mu      sync.Mutex
	queue   []Event
	limit   int
	dropped int
	closed  bool

	notify chan struct{} // емкость 1: сигнал "в очереди что-то есть"
	done   chan struct{}
}

func newSubscription(h *Hub, limit int) *Subscription {
	return &Subscription{
		hub:    h,
		limit:  limit,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push добавляет событие в конец очереди; возвращает true, если старое событие вытеснено
func (s *Subscription) push(e Event) (dropped bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if len(s.queue) >= s.limit {
		s.evictOldest()
		dropped = true
	}
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	s.signal()
	return dropped
}

// prepend ставит событие в начало очереди (снимок идет раньше живых обновлений)
func (s *Subscription) prepend(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append([]Event{e}, s.queue...)
	for len(s.queue) > s.limit && len(s.queue) > 1 {
		s.evictOldest()
	}
	s.mu.Unlock()

	s.signal()
}

// evictOldest удаляет самое старое живое событие; непрочитанный снимок вытесняется последним
func (s *Subscription) evictOldest() {
	idx := 0
	if len(s.queue) > 1 && s.queue[0].Type == EventSnapshot {
		idx = 1
	}
	s.queue = append(s.queue[:idx], s.queue[idx+1:]...)
	s.dropped++
}

func (s *Subscription) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next ждет следующее событие, отмену контекста или закрытие подписки
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			e := s.queue[0]
			s.queue[0] = Event{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return e, nil
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return Event{}, ErrSubscriptionClosed
		}

		select {
		case <-s.notify:
		case <-s.done:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Done закрывается вместе с подпиской
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Dropped - сколько событий вытеснено из-за медленного чтения
func (s *Subscription) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close отписывается от хаба
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s)
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	close(s.done)
}
