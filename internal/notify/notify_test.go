package notify

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done bool
	err  error
}

func (t *fakeToken) Wait() bool                     { return t.done }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.done {
		close(ch)
	}
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient records publishes; other client methods are not used.
type fakeClient struct {
	mqtt.Client
	token        *fakeToken
	sent         []published
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

type recordingObserver struct {
	events []string
	errs   []error
}

func (o *recordingObserver) Published(event string, err error) {
	o.events = append(o.events, event)
	o.errs = append(o.errs, err)
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{token: &fakeToken{done: true}}
	logger, hook := test.NewNullLogger()
	obs := &recordingObserver{}
	p := newMQTTPublisher(client, Config{TopicPrefix: "fleet/admin/"}, logger, obs)

	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	p.Publish(Event{Event: EventTrackerCreated, OrganizationID: "5550001111", TrackerID: "1700000000000KA01AB1234", IMEI: "3567", At: at})

	require.Len(t, client.sent, 1)
	assert.Equal(t, "fleet/admin/tracker.created", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var got Event
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &got))
	assert.Equal(t, "1700000000000KA01AB1234", got.TrackerID)
	assert.True(t, at.Equal(got.At))

	assert.Equal(t, []string{EventTrackerCreated}, obs.events)
	assert.Nil(t, obs.errs[0])
	assert.Empty(t, hook.AllEntries())
}

func TestMQTTPublisher_FailuresAreLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()

	timedOut := newMQTTPublisher(&fakeClient{token: &fakeToken{done: false}}, Config{}, logger, nil)
	timedOut.Publish(Event{Event: EventTrackerHold})

	rejected := newMQTTPublisher(&fakeClient{token: &fakeToken{done: true, err: errors.New("not authorized")}}, Config{}, logger, nil)
	rejected.Publish(Event{Event: EventTrackerRemoved})

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "change notification dropped", hook.LastEntry().Message)
	assert.Equal(t, EventTrackerRemoved, hook.LastEntry().Data["event"])
}

func TestMQTTPublisher_TopicWithoutPrefix(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := newMQTTPublisher(&fakeClient{token: &fakeToken{done: true}}, Config{}, logger, nil)
	assert.Equal(t, "organization.hold", p.Topic(EventOrganizationHold))
}

func TestMQTTPublisher_Close(t *testing.T) {
	client := &fakeClient{token: &fakeToken{done: true}}
	logger, _ := test.NewNullLogger()
	newMQTTPublisher(client, Config{}, logger, nil).Close()
	assert.True(t, client.disconnected)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NotPanics(t, func() {
		p.Publish(Event{Event: EventTrackerUpdated})
		p.Close()
	})
}
