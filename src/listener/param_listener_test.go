package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"param-server/src/analysis"
	"param-server/src/client"
	"param-server/src/helpers"
	"param-server/src/logger"
	"param-server/src/metrics"
	"param-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEstimator derives parameters from the symbol so responses can be told apart.
type fakeEstimator struct {
	mu      sync.Mutex
	calls   []models.MRequest
	release chan struct{}
	panics  bool
}

func (f *fakeEstimator) Estimate(ctx context.Context, symbol string, years int) (models.MParameters, error) {
	f.mu.Lock()
	f.calls = append(f.calls, models.MRequest{Symbol: symbol, Years: years})
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("boom")
	}
	if symbol == "ZZZZ" {
		return models.MParameters{}, helpers.NewDataUnavailableError(symbol, "empty series")
	}
	n := float64(len(symbol))
	return models.MParameters{Mu: n / 1000, Sigma: n / 100, S0: n * 10}, nil
}

func (f *fakeEstimator) lastCall() models.MRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.MServedEvent
}

func (r *recordingSink) Publish(e models.MServedEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingSink) snapshot() []models.MServedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.MServedEvent(nil), r.events...)
}

func testConfig() *models.MConfig {
	return &models.MConfig{Host: "127.0.0.1", Port: 0, DefaultYears: 5, ReadBufferBytes: 256}
}

// startListener serves on an ephemeral port until the test ends.
func startListener(t *testing.T, cfg *models.MConfig, est *fakeEstimator, sink *recordingSink) (*ParamListener, string) {
	t.Helper()
	l := NewParamListener(cfg, est, metrics.NewCollector(), nil, logger.NewLogger(nil, "ListenerTest"))
	if sink != nil {
		l.Events = sink
	}
	require.NoError(t, l.Listen(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("listener did not stop")
		}
	})
	return l, l.Addr().String()
}

// roundTrip writes raw and returns the single reply line.
func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)

	reply, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(reply)
}

func TestServeSuccessAndDefaultYears(t *testing.T) {
	est := &fakeEstimator{}
	_, addr := startListener(t, testConfig(), est, nil)

	assert.Equal(t, "0.004 0.04 40\n", roundTrip(t, addr, "GET aapl\n"))
	assert.Equal(t, models.MRequest{Symbol: "AAPL", Years: 5}, est.lastCall())

	roundTrip(t, addr, "get msft 2\n")
	assert.Equal(t, models.MRequest{Symbol: "MSFT", Years: 2}, est.lastCall())
}

func TestServeBadRequests(t *testing.T) {
	est := &fakeEstimator{}
	_, addr := startListener(t, testConfig(), est, nil)

	for _, raw := range []string{
		"PUT AAPL\n",
		"GET\n",
		"\n",
		"HELLO\n",
		"GET AAPL 0\n",
		strings.Repeat("A", 256),
	} {
		assert.Equal(t, "ERROR bad request\n", roundTrip(t, addr, raw), "request %q", raw)
	}
	assert.Empty(t, est.calls)
}

func TestServeNonIntegerYears(t *testing.T) {
	_, addr := startListener(t, testConfig(), &fakeEstimator{}, nil)

	reply := roundTrip(t, addr, "GET AAPL five\n")
	assert.True(t, strings.HasPrefix(reply, "ERROR "), reply)
}

func TestServeEstimatorFailure(t *testing.T) {
	_, addr := startListener(t, testConfig(), &fakeEstimator{}, nil)

	assert.Equal(t, "ERROR no usable data for symbol ZZZZ: empty series\n", roundTrip(t, addr, "GET ZZZZ\n"))
}

func TestServeRecoversFromPanic(t *testing.T) {
	_, addr := startListener(t, testConfig(), &fakeEstimator{panics: true}, nil)

	assert.Equal(t, "ERROR internal error: boom\n", roundTrip(t, addr, "GET AAPL\n"))
	// still accepting
	assert.Equal(t, "ERROR internal error: boom\n", roundTrip(t, addr, "GET AAPL\n"))
}

type seriesSource struct{ series models.MPriceSeries }

func (s seriesSource) Name() string { return "fixed" }
func (s seriesSource) Fetch(ctx context.Context, symbol string, years int) (models.MPriceSeries, error) {
	return s.series, nil
}

// dailySeries spaces closes one day apart, starting from a real 2016 session.
func dailySeries(symbol string, closes ...float64) models.MPriceSeries {
	start := time.Date(2016, 9, 30, 20, 0, 0, 0, time.UTC)
	s := models.MPriceSeries{Symbol: symbol}
	for i, c := range closes {
		s.Points = append(s.Points, models.MPricePoint{Timestamp: start.AddDate(0, 0, i).Unix(), Close: c})
	}
	return s
}

// serveFacade runs a listener over the real analysis facade fed by series.
func serveFacade(t *testing.T, series models.MPriceSeries) string {
	t.Helper()
	cfg := testConfig()
	facade := analysis.NewAnalysisFacade(cfg, seriesSource{series}, nil, logger.NewLogger(nil, "test"))

	l := NewParamListener(cfg, facade, nil, nil, logger.NewLogger(nil, "test"))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, l.Listen(ctx))
	go l.Serve(ctx)
	return l.Addr().String()
}

func TestServeNonPositivePriceIsError(t *testing.T) {
	addr := serveFacade(t, dailySeries("BAD", 10, 0, 11, 12))

	reply := roundTrip(t, addr, "GET BAD 10\n")
	assert.True(t, strings.HasPrefix(reply, "ERROR no usable data for symbol BAD"), reply)
	assert.NotContains(t, reply, "NaN")
	assert.NotContains(t, reply, "internal error")
}

func TestServeTwoPricesIsError(t *testing.T) {
	addr := serveFacade(t, dailySeries("TWO", 100, 101))

	reply := roundTrip(t, addr, "GET TWO\n")
	assert.True(t, strings.HasPrefix(reply, "ERROR no usable data for symbol TWO: need at least 3 prices, got 2"), reply)
	assert.True(t, strings.HasSuffix(reply, "\n"))
}

func TestServeLongLookback(t *testing.T) {
	addr := serveFacade(t, dailySeries("OLD", 100, 110, 99, 104))

	reply := roundTrip(t, addr, "GET OLD 10\n")
	assert.False(t, strings.HasPrefix(reply, "ERROR"), reply)
	assert.Len(t, strings.Fields(reply), 3)
}

func TestServeConcurrentClients(t *testing.T) {
	_, addr := startListener(t, testConfig(), &fakeEstimator{}, nil)

	symbols := []string{"A", "BB", "CCC", "DDDD", "EEEEE", "FFFFFF", "GGGGGGG", "HHHHHHHH"}
	var wg sync.WaitGroup
	for round := 0; round < 4; round++ {
		for _, sym := range symbols {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, err := client.NewParamClient(addr, 5*time.Second).Get(context.Background(), sym, 1)
				if !assert.NoError(t, err) {
					return
				}
				n := float64(len(sym))
				assert.Equal(t, models.MParameters{Mu: n / 1000, Sigma: n / 100, S0: n * 10}, p, sym)
			}()
		}
	}
	wg.Wait()
}

func TestServeSilentCloseDoesNotBlockAccept(t *testing.T) {
	_, addr := startListener(t, testConfig(), &fakeEstimator{}, nil)

	for i := 0; i < 3; i++ {
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		conn.Close()
	}

	// a client that connects and never writes holds only its own goroutine
	idle, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer idle.Close()

	assert.Equal(t, "0.001 0.01 10\n", roundTrip(t, addr, "GET X\n"))
}

func TestServeReadTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.ReadTimeoutSeconds = 1
	_, addr := startListener(t, cfg, &fakeEstimator{}, nil)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ERROR receive timed out: i/o timeout\n", line)
}

func TestServeMaxConnections(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConnections = 1
	est := &fakeEstimator{release: make(chan struct{})}
	_, addr := startListener(t, cfg, est, nil)

	first := make(chan string, 1)
	go func() { first <- roundTrip(t, addr, "GET ONE\n") }()

	require.Eventually(t, func() bool {
		est.mu.Lock()
		defer est.mu.Unlock()
		return len(est.calls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	second := make(chan string, 1)
	go func() { second <- roundTrip(t, addr, "GET TWO\n") }()

	// second connection waits in the backlog while the slot is taken
	time.Sleep(100 * time.Millisecond)
	est.mu.Lock()
	assert.Len(t, est.calls, 1)
	est.mu.Unlock()

	close(est.release)
	assert.Equal(t, "0.003 0.03 30\n", <-first)
	assert.Equal(t, "0.003 0.03 30\n", <-second)
}

func TestServePublishesEvents(t *testing.T) {
	sink := &recordingSink{}
	_, addr := startListener(t, testConfig(), &fakeEstimator{}, sink)

	roundTrip(t, addr, "GET AB 3\n")
	roundTrip(t, addr, "NOPE\n")

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	byOutcome := map[string]models.MServedEvent{}
	for _, e := range sink.snapshot() {
		byOutcome[e.Outcome] = e
	}

	ok := byOutcome["ok"]
	assert.Equal(t, "AB", ok.Symbol)
	assert.Equal(t, 3, ok.Years)
	require.NotNil(t, ok.Params)
	assert.Equal(t, 20.0, ok.Params.S0)
	assert.Len(t, ok.ConnID, 8)

	bad := byOutcome["protocol"]
	assert.Equal(t, "bad request", bad.Error)
	assert.Nil(t, bad.Params)
}

func TestServeStopsOnCancel(t *testing.T) {
	l := NewParamListener(testConfig(), &fakeEstimator{}, nil, nil, logger.NewLogger(nil, "test"))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()
	require.Eventually(t, func() bool { return l.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestListenBindFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig()
	cfg.Port = busy.Addr().(*net.TCPAddr).Port
	l := NewParamListener(cfg, &fakeEstimator{}, nil, nil, logger.NewLogger(nil, "test"))

	err = l.Listen(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("bind 127.0.0.1:%d", cfg.Port))
}

func TestClassifyReadError(t *testing.T) {
	assert.Equal(t, "protocol", helpers.Category(classifyReadError(errors.New("connection reset by peer"))))
	assert.Equal(t, "timeout", helpers.Category(classifyReadError(&net.OpError{Op: "read", Err: timeoutErr{}})))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
