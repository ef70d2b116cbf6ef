// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feed

import (
	"time"

	"github.com/ManuGH/reelfeed/internal/metrics"
	"golang.org/x/time/rate"
)

// Pager is the infinite-scroll collaborator.
type Pager interface {
	HasMore() bool
	OnReachEnd()
}

// NopPager never has more pages.
type NopPager struct{}

func (NopPager) HasMore() bool { return false }
func (NopPager) OnReachEnd()   {}

// PagerFuncs adapts plain functions to Pager. Nil funcs mean "no more" and "do nothing".
type PagerFuncs struct {
	More func() bool
	End  func()
}

func (p PagerFuncs) HasMore() bool {
	return p.More != nil && p.More()
}

func (p PagerFuncs) OnReachEnd() {
	if p.End != nil {
		p.End()
	}
}

// ThrottledPager drops reach-end triggers that arrive faster than the limit,
// since scrolling around the last slot fires repeatedly.
type ThrottledPager struct {
	next    Pager
	limiter *rate.Limiter
}

// NewThrottledPager allows one trigger per interval (burst 1).
func NewThrottledPager(next Pager, interval time.Duration) *ThrottledPager {
	return &ThrottledPager{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (p *ThrottledPager) HasMore() bool {
	return p.next.HasMore()
}

func (p *ThrottledPager) OnReachEnd() {
	if !p.limiter.Allow() {
		metrics.IncReachEnd("throttled")
		return
	}
	p.next.OnReachEnd()
}

var (
	_ Pager = NopPager{}
	_ Pager = PagerFuncs{}
	_ Pager = (*ThrottledPager)(nil)
)
