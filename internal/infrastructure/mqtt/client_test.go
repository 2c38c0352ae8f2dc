package mqtt

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/influxwire/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "influxwire-test",
		},
		QoS:   1,
		Topic: "influxwire/test/lines",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// newFakeClient returns a Client backed by fakePaho.
func newFakeClient(t *testing.T) (*Client, *fakePaho) {
	t.Helper()
	fake := &fakePaho{connected: true}
	return newWithClient(testConfig(), fake), fake
}

// skipIfNoBroker skips the test if no broker listens on 127.0.0.1:1883.
func skipIfNoBroker(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 500*time.Millisecond)
	if err != nil {
		t.Skip("MQTT broker not available, skipping")
	}
	_ = conn.Close()
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "loader", Password: "secret"}

	opts := buildClientOptions(cfg)
	configureLWT(opts, Topics{Root: cfg.Topic}, cfg.Broker.ClientID)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "influxwire-test" {
		t.Errorf("ClientID = %q, want influxwire-test", opts.ClientID)
	}
	if opts.Username != "loader" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want loader/secret", opts.Username, opts.Password)
	}
	if !opts.CleanSession || !opts.AutoReconnect {
		t.Errorf("CleanSession=%v AutoReconnect=%v, want both true", opts.CleanSession, opts.AutoReconnect)
	}
	if opts.MaxReconnectInterval != 5*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 5s", opts.MaxReconnectInterval)
	}
	if opts.WillTopic != "influxwire/test/lines_status" || !opts.WillRetained {
		t.Errorf("will = %q retained=%v, want status topic retained", opts.WillTopic, opts.WillRetained)
	}
	if !strings.Contains(string(opts.WillPayload), `"status":"offline"`) {
		t.Errorf("WillPayload = %s, want offline status", opts.WillPayload)
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without cfg.Broker.TLS")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)
	if opts.Servers[0].String() != "ssl://127.0.0.1:8883" {
		t.Errorf("Servers[0] = %v, want ssl://127.0.0.1:8883", opts.Servers[0])
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLSConfig missing or below TLS 1.2")
	}
}

func TestStatusPayload(t *testing.T) {
	got := statusPayload("online", "loader-1", "")
	if !strings.HasPrefix(got, `{"status":"online","client_id":"loader-1","timestamp":"`) {
		t.Errorf("statusPayload() = %s", got)
	}
	if strings.Contains(got, "reason") {
		t.Errorf("statusPayload() = %s, want no reason", got)
	}
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopics(t *testing.T) {
	topics := Topics{Root: "influxwire/lines/"}
	if got := topics.Lines(); got != "influxwire/lines" {
		t.Errorf("Lines() = %q", got)
	}
	if got := topics.Status(); got != "influxwire/lines_status" {
		t.Errorf("Status() = %q", got)
	}
	if got := topics.AllLines(); got != "influxwire/lines/#" {
		t.Errorf("AllLines() = %q", got)
	}
}

func TestTopics_AllLinesExcludesStatus(t *testing.T) {
	for _, root := range []string{"influxwire/lines", "influxwire/lines/", "metrics"} {
		topics := Topics{Root: root}
		if !filterMatches(topics.AllLines(), topics.Lines()) {
			t.Errorf("AllLines() %q does not match %q", topics.AllLines(), topics.Lines())
		}
		if !filterMatches(topics.AllLines(), topics.Lines()+"/batch") {
			t.Errorf("AllLines() %q does not match a subtopic", topics.AllLines())
		}
		if filterMatches(topics.AllLines(), topics.Status()) {
			t.Errorf("AllLines() %q matches status topic %q", topics.AllLines(), topics.Status())
		}
	}
}

// filterMatches applies MQTT subscription filter rules to a topic name.
func filterMatches(filter, topic string) bool {
	f := strings.Split(filter, "/")
	n := strings.Split(topic, "/")
	for i, level := range f {
		if level == "#" {
			return true
		}
		if i >= len(n) {
			return false
		}
		if level != "+" && level != n[i] {
			return false
		}
	}
	return len(f) == len(n)
}

func TestValidatePublishTopic(t *testing.T) {
	tests := []struct {
		topic   string
		wantErr bool
	}{
		{"influxwire/lines", false},
		{"a", false},
		{"", true},
		{"influxwire/+/lines", true},
		{"influxwire/#", true},
		{"bad\x00topic", true},
	}
	for _, tt := range tests {
		err := validatePublishTopic(tt.topic)
		if (err != nil) != tt.wantErr {
			t.Errorf("validatePublishTopic(%q) error = %v, wantErr %v", tt.topic, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("validatePublishTopic(%q) error = %v, want ErrInvalidTopic", tt.topic, err)
		}
	}
}

// =============================================================================
// Publish Tests
// =============================================================================

func TestWrite(t *testing.T) {
	client, fake := newFakeClient(t)

	payload := []byte("my_measure,region=us-east count=3i \n")
	if err := client.Write(context.Background(), payload); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	sent := fake.sent()
	if len(sent) != 1 {
		t.Fatalf("published %d messages, want 1", len(sent))
	}
	if sent[0].topic != "influxwire/test/lines" || sent[0].qos != 1 || sent[0].retained {
		t.Errorf("published to %q qos=%d retained=%v", sent[0].topic, sent[0].qos, sent[0].retained)
	}
	if string(sent[0].payload) != string(payload) {
		t.Errorf("payload = %q, want %q", sent[0].payload, payload)
	}
}

func TestWrite_BrokerError(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.next = completedToken(errors.New("not authorised"))

	err := client.Write(context.Background(), []byte("m v=1i \n"))
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Write() error = %v, want ErrPublishFailed", err)
	}
}

func TestWrite_ContextDeadline(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.next = &fakeToken{done: make(chan struct{})}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := client.Write(ctx, []byte("m v=1i \n"))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Write() error = %v, want ErrTimeout", err)
	}
}

func TestWrite_Cancelled(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.next = &fakeToken{done: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Write(ctx, []byte("m v=1i \n"))
	if !errors.Is(err, ErrPublishFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("Write() error = %v, want ErrPublishFailed wrapping context.Canceled", err)
	}
}

func TestPublish_Validation(t *testing.T) {
	client, _ := newFakeClient(t)

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"wildcard topic", "a/#", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "a", []byte("x"), 3, ErrInvalidQoS},
		{"too large", "a", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublish_Disconnected(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.connected = false

	if err := client.Publish("a", []byte("x"), 0, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestConnect_InvalidTopic(t *testing.T) {
	cfg := testConfig()
	cfg.Topic = "lines/#"

	if _, err := Connect(cfg); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Connect() error = %v, want ErrInvalidTopic", err)
	}
}

func TestConnect_InvalidQoS(t *testing.T) {
	cfg := testConfig()
	cfg.QoS = 5

	if _, err := Connect(cfg); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Connect() error = %v, want ErrInvalidQoS", err)
	}
}

func TestHandleConnect_PublishesOnlineStatus(t *testing.T) {
	client, fake := newFakeClient(t)
	called := make(chan struct{}, 1)
	client.SetOnConnect(func() { called <- struct{}{} })

	client.handleConnect()

	sent := fake.sent()
	if len(sent) != 1 || sent[0].topic != "influxwire/test/lines_status" || !sent[0].retained {
		t.Fatalf("published %+v, want one retained status message", sent)
	}
	if !strings.Contains(string(sent[0].payload), `"status":"online"`) {
		t.Errorf("payload = %s, want online status", sent[0].payload)
	}
	select {
	case <-called:
	default:
		t.Error("OnConnect callback not invoked")
	}
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Info(string, ...any)      {}
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }

func TestHandleDisconnect(t *testing.T) {
	client, _ := newFakeClient(t)
	logger := &recordingLogger{}
	client.SetLogger(logger)

	var gotErr error
	client.SetOnDisconnect(func(err error) { gotErr = err })

	lost := errors.New("connection reset")
	client.handleDisconnect(lost)

	if client.IsConnected() {
		t.Error("IsConnected() = true after disconnect")
	}
	if gotErr != lost {
		t.Errorf("OnDisconnect error = %v, want %v", gotErr, lost)
	}
	if len(logger.warnings) != 1 {
		t.Errorf("logged %d warnings, want 1", len(logger.warnings))
	}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestClose_PublishesOfflineStatus(t *testing.T) {
	client, fake := newFakeClient(t)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	sent := fake.sent()
	if len(sent) != 1 || !strings.Contains(string(sent[0].payload), "graceful_shutdown") {
		t.Errorf("published %+v, want graceful offline status", sent)
	}
	if !fake.disconnected {
		t.Error("Close() did not disconnect")
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestCloseNil(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client, _ := newFakeClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should fail for a cancelled context")
	}
}

// =============================================================================
// Broker Tests
// =============================================================================

func TestConnect(t *testing.T) {
	skipIfNoBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	if err := client.Write(context.Background(), []byte("m v=1i \n")); err != nil {
		t.Errorf("Write() error = %v", err)
	}
}

func TestConnect_BrokerRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19998

	_, err := Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should fail for refused connection")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}
