// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSessionGauge_TracksEngineSessionsOnly(t *testing.T) {
	before := testutil.ToFloat64(StreamingSessionsActive)

	SessionCreated("engine")
	SessionCreated("native")
	assert.Equal(t, before+1, testutil.ToFloat64(StreamingSessionsActive))

	SessionDestroyed()
	assert.Equal(t, before, testutil.ToFloat64(StreamingSessionsActive))
}

func TestIncClaim_EmptyResultIsUnknown(t *testing.T) {
	before := testutil.ToFloat64(ClaimsTotal.WithLabelValues("unknown"))
	IncClaim("")
	assert.Equal(t, before+1, testutil.ToFloat64(ClaimsTotal.WithLabelValues("unknown")))
}

func TestIncFeedFetch_Labels(t *testing.T) {
	before := testutil.ToFloat64(FeedFetchTotal.WithLabelValues("failure", "timeout"))
	IncFeedFetch(false, "timeout")
	assert.Equal(t, before+1, testutil.ToFloat64(FeedFetchTotal.WithLabelValues("failure", "timeout")))

	okBefore := testutil.ToFloat64(FeedFetchTotal.WithLabelValues("success", "none"))
	IncFeedFetch(true, "")
	assert.Equal(t, okBefore+1, testutil.ToFloat64(FeedFetchTotal.WithLabelValues("success", "none")))
}
