package consumer

import (
	"context"
	"encoding/binary"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func frame(schemaID uint32, payload string) []byte {
	value := make([]byte, 5+len(payload))
	binary.BigEndian.PutUint32(value[1:5], schemaID)
	copy(value[5:], payload)
	return value
}

func sessionMessage(offset int64, payload string) kafka.Message {
	return kafka.Message{
		Topic:  "gym_training_events",
		Offset: offset,
		Time:   time.Now().UTC(),
		Key:    []byte("u1"),
		Value:  frame(42, payload),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("session.logged")},
			{Key: "aggregate_type", Value: []byte("session")},
			{Key: "schema_subject", Value: []byte("gym_training_events-session.logged")},
		},
	}
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	payload := `{"session_id":"s1","user_id":"u1"}`
	reader := &stubReader{messages: []kafka.Message{sessionMessage(10, payload)}}
	handler := &stubHandler{}

	consumed := consumedEvents.WithLabelValues("gym_training_events", "session.logged")
	before := testutil.ToFloat64(consumed)
	err := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0))).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, "session.logged", handler.last.EventType)
	require.Equal(t, "session", handler.last.AggregateType)
	require.Equal(t, "u1", handler.last.Key)
	require.Equal(t, 42, handler.last.SchemaID)
	require.JSONEq(t, payload, string(handler.last.Payload))
	require.InDelta(t, before+1, testutil.ToFloat64(consumed), 0.0001)
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{sessionMessage(20, `{}`)}}
	handler := &stubHandler{err: errors.New("boom")}

	failures := consumeFailures.WithLabelValues("gym_training_events", stageHandle)
	before := testutil.ToFloat64(failures)
	err := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0))).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls)
	require.InDelta(t, before+1, testutil.ToFloat64(failures), 0.0001)
}

func TestProcessorCommitsUndecodableMessages(t *testing.T) {
	noHeader := sessionMessage(30, `{}`)
	noHeader.Headers = nil
	short := kafka.Message{Topic: "gym_member_events", Value: []byte{0, 1}}
	badJSON := sessionMessage(31, `{not json`)

	reader := &stubReader{messages: []kafka.Message{noHeader, short, badJSON}}
	handler := &stubHandler{}

	decodeFailures := consumeFailures.WithLabelValues("gym_training_events", stageDecode)
	before := testutil.ToFloat64(decodeFailures)
	err := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0))).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, handler.calls)
	require.Equal(t, 3, reader.commitCalls)
	require.InDelta(t, before+2, testutil.ToFloat64(decodeFailures), 0.0001)
}

func TestProcessorRetriesFetchErrors(t *testing.T) {
	reader := &stubReader{
		messages:  []kafka.Message{sessionMessage(40, `{}`)},
		failFirst: 2,
	}
	handler := HandlerFunc(func(context.Context, Message) error { return nil })

	err := NewProcessor(reader, handler, WithFetchBackoff(time.Millisecond), WithLogger(log.New(testWriter{t}, "", 0))).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, reader.commitCalls)
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
	failFirst   int
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.failFirst > 0 {
		r.failFirst--
		return kafka.Message{}, errors.New("broker unavailable")
	}
	if r.index >= len(r.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.commitCalls += len(msgs)
	return nil
}

func (r *stubReader) Close() error { return nil }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(string(p))
	return len(p), nil
}
