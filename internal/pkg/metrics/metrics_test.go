package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStat struct{ acquired, idle, total int32 }

func (f fakeStat) AcquiredConns() int32 { return f.acquired }
func (f fakeStat) IdleConns() int32     { return f.idle }
func (f fakeStat) TotalConns() int32    { return f.total }

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakeStat{acquired: 2, idle: 3, total: 5})

	if got := testutil.ToFloat64(dbConnsAcquired); got != 2 {
		t.Errorf("acquired = %v, want 2", got)
	}
	if got := testutil.ToFloat64(dbConnsIdle); got != 3 {
		t.Errorf("idle = %v, want 3", got)
	}
	if got := testutil.ToFloat64(dbConnsOpen); got != 5 {
		t.Errorf("open = %v, want 5", got)
	}
}
