package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(EventNewOrder, 100, map[string]any{"order_sn": "O1"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventNewOrder, ev.Type)
	assert.JSONEq(t, `{"order_sn":"O1"}`, string(ev.Data))

	ev, err = NewEvent(EventChat, 100, nil)
	require.NoError(t, err)
	assert.Nil(t, ev.Data)

	_, err = NewEvent(EventChat, 100, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

// ==================== Hub ====================

func TestHub_DeliversPerUser(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	a, cancelA := hub.Subscribe("u1")
	defer cancelA()
	b, cancelB := hub.Subscribe("u2")
	defer cancelB()

	ev, _ := NewEvent(EventNotification, 100, nil)
	require.NoError(t, hub.Notify(context.Background(), "u1", ev))

	got := <-a.C
	assert.Equal(t, ev.ID, got.ID)
	assert.Empty(t, b.C)
	assert.Equal(t, 1, hub.Count("u1"))
}

func TestHub_DropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	sub, cancel := hub.Subscribe("u1")
	defer cancel()

	first, _ := NewEvent(EventChat, 1, nil)
	second, _ := NewEvent(EventChat, 1, nil)
	require.NoError(t, hub.Notify(context.Background(), "u1", first))
	require.NoError(t, hub.Notify(context.Background(), "u1", second))

	assert.Equal(t, first.ID, (<-sub.C).ID)
	assert.Empty(t, sub.C)
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	hub := NewHub(0, zap.NewNop())
	sub, cancel := hub.Subscribe("u1")
	cancel()
	cancel()

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Count("u1"))

	other, cancelOther := hub.Subscribe("u2")
	hub.Close()
	_, ok = <-other.C
	assert.False(t, ok)
	// Close 之后取消不应 panic
	cancelOther()
}

// ==================== Multi / Kafka ====================

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w, timeout: time.Second}

	ev, _ := NewEvent(EventNewOrder, 100, map[string]any{"order_sn": "O1"})
	require.NoError(t, p.Notify(context.Background(), "u1", ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "u1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventNewOrder, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, string, Event) error { return f.err }

func TestMulti_JoinsErrors(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	sub, cancel := hub.Subscribe("u1")
	defer cancel()

	boom := errors.New("broker down")
	m := Multi{hub, nil, failingNotifier{err: boom}, &KafkaPublisher{w: &fakeWriter{err: boom}, timeout: time.Second}}

	ev, _ := NewEvent(EventChat, 1, nil)
	err := m.Notify(context.Background(), "u1", ev)
	assert.ErrorIs(t, err, boom)
	// 其他通道失败不影响进程内推送
	assert.Equal(t, ev.ID, (<-sub.C).ID)
}
