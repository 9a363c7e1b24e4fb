package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	"go.uber.org/zap"
)

func TestDecodeEnvelope(t *testing.T) {
	inner := `{"order_id":"ORD-1"}`
	wrapped, _ := json.Marshal(map[string]string{"Type": "Notification", "Message": inner})

	assert.JSONEq(t, inner, string(DecodeEnvelope(wrapped)))
	assert.Equal(t, inner, string(DecodeEnvelope([]byte(inner))))
	assert.Equal(t, "not json", string(DecodeEnvelope([]byte("not json"))))
}

func TestNew_SelectsDriver(t *testing.T) {
	_, err := New(Options{Driver: "sqs"})
	assert.Error(t, err)

	_, err = New(Options{Driver: "kafka"})
	assert.Error(t, err)

	_, err = New(Options{Driver: "rabbit"})
	assert.ErrorContains(t, err, "unknown queue driver")

	tr, err := New(Options{SQS: awspkg.NewSQSClientWithAPI(&stubSQS{}, zap.NewNop())})
	require.NoError(t, err)
	assert.IsType(t, &SQSTransport{}, tr)

	tr, err = New(Options{Driver: "KAFKA", KafkaBrokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.IsType(t, &KafkaTransport{}, tr)
	assert.NoError(t, tr.Close())
}

type stubSQS struct {
	sent    []string
	inbox   []types.Message
	deleted int
	cancel  context.CancelFunc
}

func (s *stubSQS) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	return &sqs.GetQueueUrlOutput{QueueUrl: sdkaws.String("http://localhost:4566/q/" + *in.QueueName)}, nil
}

func (s *stubSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	s.sent = append(s.sent, *in.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

func (s *stubSQS) ReceiveMessage(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	msgs := s.inbox
	s.inbox = nil
	if len(msgs) == 0 && s.cancel != nil {
		s.cancel()
	}
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (s *stubSQS) DeleteMessage(context.Context, *sqs.DeleteMessageInput, ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	s.deleted++
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSTransport_PublishAndConsume(t *testing.T) {
	api := &stubSQS{}
	tr := NewSQSTransport(awspkg.NewSQSClientWithAPI(api, zap.NewNop()))

	require.NoError(t, tr.Publish(context.Background(), OrdersQueue, map[string]string{"order_id": "ORD-1"}))
	assert.Equal(t, []string{`{"order_id":"ORD-1"}`}, api.sent)

	envelope, _ := json.Marshal(map[string]string{"Message": `{"order_id":"ORD-2"}`})
	api.inbox = []types.Message{{Body: sdkaws.String(string(envelope)), ReceiptHandle: sdkaws.String("r")}}

	ctx, cancel := context.WithCancel(context.Background())
	api.cancel = cancel

	var got []string
	err := tr.Consume(ctx, ConfirmationQueue, func(_ context.Context, body []byte) error {
		got = append(got, string(body))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{`{"order_id":"ORD-2"}`}, got)
	assert.Equal(t, 1, api.deleted)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	queue     []kafka.Message
	committed []int64
	cancel    context.CancelFunc
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func TestKafkaTransport_PublishKeysByOrderID(t *testing.T) {
	w := &fakeWriter{}
	tr := &KafkaTransport{writer: w, logger: zap.NewNop()}

	require.NoError(t, tr.Publish(context.Background(), OrdersQueue, map[string]any{"order_id": "ORD-9", "warehouse_id": 1}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, OrdersQueue, w.msgs[0].Topic)
	assert.Equal(t, []byte("ORD-9"), w.msgs[0].Key)

	w.err = errors.New("broker down")
	assert.ErrorContains(t, tr.Publish(context.Background(), OrdersQueue, map[string]any{}), "broker down")
}

func TestKafkaTransport_CommitsOnlyAccepted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{
		cancel: cancel,
		queue: []kafka.Message{
			{Offset: 1, Value: []byte(`{"order_id":"ORD-1"}`)},
			{Offset: 2, Value: []byte(`bad`)},
			{Offset: 3, Value: []byte(`{"order_id":"ORD-3"}`)},
		},
	}
	var topic string
	tr := &KafkaTransport{
		writer:    &fakeWriter{},
		newReader: func(t string) kafkaReader { topic = t; return reader },
		logger:    zap.NewNop(),
	}

	err := tr.Consume(ctx, ConfirmationQueue, func(_ context.Context, body []byte) error {
		if string(body) == "bad" {
			return errors.New("decode")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, ConfirmationQueue, topic)
	assert.Equal(t, []int64{1, 3}, reader.committed)
	assert.True(t, reader.closed)
}
