package keepalive

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPingerPingsOnInterval(t *testing.T) {
	var pings atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pings.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	pinger := New(server.URL, 10*time.Millisecond, nil)
	pinger.Start()
	defer pinger.Stop()

	deadline := time.After(2 * time.Second)
	for pings.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("pings = %d after deadline", pings.Load())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestPingerStopHalts(t *testing.T) {
	var pings atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pings.Add(1)
	}))
	defer server.Close()

	pinger := New(server.URL, 5*time.Millisecond, nil)
	pinger.Start()
	for pings.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	pinger.Stop()

	settled := pings.Load()
	time.Sleep(30 * time.Millisecond)
	if pings.Load() != settled {
		t.Errorf("pings continued after Stop: %d -> %d", settled, pings.Load())
	}

	// Stop again must not block or panic.
	pinger.Stop()
}

func TestPingerWithoutURLIsNoop(t *testing.T) {
	pinger := New("", time.Millisecond, nil)
	pinger.Start()
	pinger.Stop()
}
