package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	Register()

	before := testutil.ToFloat64(storeOps.WithLabelValues("read", "ok"))
	IncStoreOp("read", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(storeOps.WithLabelValues("read", "ok")))

	before = testutil.ToFloat64(bookings.WithLabelValues("book"))
	IncBooking("book")
	assert.Equal(t, before+1, testutil.ToFloat64(bookings.WithLabelValues("book")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("desks"))
	IncHTTP("desks")
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("desks")))

	before = testutil.ToFloat64(notifyFailures)
	IncNotifyFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(notifyFailures))
}
