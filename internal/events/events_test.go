package events

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_Publish(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "demo" {
			return errors.New("message not keyed by preview name")
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		ev, err := Decode(raw)
		if err != nil {
			return err
		}
		if ev.Action != ActionDeployed || ev.URL != "https://demo.vercel.app" || ev.At.IsZero() {
			return errors.New("unexpected event payload")
		}
		return nil
	})
	defer sp.Close()

	p := NewProducer(sp, "app-previews")
	err := p.Publish(PreviewEvent{Name: "demo", Action: ActionDeployed, URL: "https://demo.vercel.app"})
	assert.NoError(t, err)
}

func TestProducer_PublishFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	defer sp.Close()

	err := NewProducer(sp, "app-previews").Publish(PreviewEvent{Name: "demo", Action: ActionSaved})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestProducer_RejectsInvalid(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	err := NewProducer(sp, "app-previews").Publish(PreviewEvent{Name: "demo", Action: ActionDeployed})
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"name":"demo","action":"saved","at":"2024-05-01T10:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, ActionSaved, ev.Action)

	_, err = Decode([]byte(`{"name":"demo","action":"renamed"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
