package notify_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"testing"
	"time"

	"storefront/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func event(msg string) notify.Event {
	return notify.Event{Kind: notify.KindSuccess, Message: msg, Collection: "cart", Action: "add", At: time.Unix(0, 0).UTC()}
}

func TestMQSink_PublishesJSON(t *testing.T) {
	pub := new(MockPublisher)
	var published []byte
	pub.On("Publish", "storefront.notifications", mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).([]byte)
	}).Return(nil).Once()

	notify.NewMQSink(pub, "storefront.notifications").Notify(event("Mug added to cart"))

	pub.AssertExpectations(t)
	var decoded notify.Event
	require.NoError(t, json.Unmarshal(published, &decoded))
	assert.Equal(t, "Mug added to cart", decoded.Message)
	assert.Equal(t, notify.KindSuccess, decoded.Kind)
}

func TestMQSink_SwallowsPublishErrors(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()

	assert.NotPanics(t, func() {
		notify.NewMQSink(pub, "q").Notify(event("x"))
	})
	pub.AssertExpectations(t)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	notify.NewLogSink(log.New(&buf, "", 0)).Notify(event("Cart cleared"))
	assert.Contains(t, buf.String(), "success cart/add: Cart cleared")
}

func TestMulti_IsolatesPanics(t *testing.T) {
	var got []string
	sink := notify.Multi{
		notify.SinkFunc(func(notify.Event) { panic("boom") }),
		nil,
		notify.SinkFunc(func(e notify.Event) { got = append(got, e.Message) }),
	}

	assert.NotPanics(t, func() { sink.Notify(event("hello")) })
	assert.Equal(t, []string{"hello"}, got)
}

func TestFeed_KeepsMostRecent(t *testing.T) {
	feed := notify.NewFeed(3)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		feed.Notify(event(m))
	}

	all := feed.Since(0)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Message)
	assert.Equal(t, uint64(3), all[0].Seq)
	assert.Equal(t, uint64(5), all[2].Seq)

	newer := feed.Since(4)
	require.Len(t, newer, 1)
	assert.Equal(t, "e", newer[0].Message)

	assert.Empty(t, feed.Since(5))
}

func TestFeed_Empty(t *testing.T) {
	assert.Empty(t, notify.NewFeed(0).Since(0))
}
