//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNorm(t *testing.T) {
	cases := map[string]string{
		" OK ":        "ok",
		"Document":    "document",
		"":            "unknown",
		"\t":          "unknown",
		"text_to_vcf": "text_to_vcf",
	}
	for in, want := range cases {
		if got := norm(in); got != want {
			t.Errorf("norm(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCounters(t *testing.T) {
	t.Run("should count operations under normalized labels", func(t *testing.T) {
		before := testutil.ToFloat64(vcfOperationsTotal.WithLabelValues("count", "ok"))
		IncOperation("COUNT", " ok")
		if got := testutil.ToFloat64(vcfOperationsTotal.WithLabelValues("count", "ok")); got != before+1 {
			t.Errorf("expected %v, got %v", before+1, got)
		}
	})

	t.Run("should ignore non-positive contact counts", func(t *testing.T) {
		before := testutil.ToFloat64(vcfContactsTotal.WithLabelValues("add_contact"))
		AddContacts("add_contact", 0)
		AddContacts("add_contact", -3)
		AddContacts("add_contact", 5)
		if got := testutil.ToFloat64(vcfContactsTotal.WithLabelValues("add_contact")); got != before+5 {
			t.Errorf("expected %v, got %v", before+5, got)
		}
	})

	t.Run("should set pool gauges", func(t *testing.T) {
		SetDBPoolStats(10, 7, 3)
		if got := testutil.ToFloat64(dbPoolConns.WithLabelValues("in_use")); got != 3 {
			t.Errorf("expected 3 in use, got %v", got)
		}
		before := testutil.ToFloat64(usagePrunedTotal)
		AddUsagePruned(0)
		AddUsagePruned(4)
		if got := testutil.ToFloat64(usagePrunedTotal); got != before+4 {
			t.Errorf("expected %v pruned, got %v", before+4, got)
		}
	})

	t.Run("should observe batch durations", func(t *testing.T) {
		ObserveBatch("rename_files", 150*time.Millisecond)
		if n := testutil.CollectAndCount(batchDuration); n == 0 {
			t.Error("expected at least one histogram series")
		}
	})
}

func TestMustRegisterWith(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegisterWith(reg)
	MustRegisterWith(reg) // second call is a no-op

	SetBuildInfo("1.0.0", "abc")
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "aura_build_info" {
			found = true
		}
	}
	if !found {
		t.Error("expected aura_build_info in the registry")
	}
}
