package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/domain/manifest"
	"github.com/telforge/phonegen/internal/domain/plan"
	"github.com/telforge/phonegen/internal/domain/record"
)

// --- Mocks ---

type stubIndex struct {
	recs    []record.Record
	lastOps []record.Operator
	called  bool
}

func (s *stubIndex) Lookup(province, city string, operators []record.Operator) []record.Record {
	s.called = true
	s.lastOps = operators
	var out []record.Record
	for _, rec := range s.recs {
		if rec.Province() == province && rec.City() == city {
			out = append(out, rec)
		}
	}
	return out
}

type stubDispatcher struct {
	err       error
	workers   int
	lastParts int
	called    bool
}

func (d *stubDispatcher) Run(_ context.Context, p plan.Plan, partitions int) ([][]string, error) {
	d.called = true
	d.lastParts = partitions
	if d.err != nil {
		return nil, d.err
	}
	lines, err := p.Slice(0, p.Total())
	if err != nil {
		return nil, err
	}
	return [][]string{lines}, nil
}

func (d *stubDispatcher) Workers() int { return d.workers }

type stubArtifacts struct {
	writeErr  error
	lastBase  string
	lastLines []string
}

func (a *stubArtifacts) BaseName(prefix, province, city, label string, at time.Time) string {
	return strings.Join([]string{prefix, province, city, label, at.Format("20060102_150405")}, "_")
}

func (a *stubArtifacts) Write(base string, lines []string) (manifest.Manifest, error) {
	a.lastBase = base
	a.lastLines = lines
	if a.writeErr != nil {
		return manifest.Manifest{}, a.writeErr
	}
	var man manifest.Manifest
	var size int64
	for _, l := range lines {
		size += int64(len(l)) + 1
	}
	man.Append(base+".txt", size, int64(len(lines)))
	return man, nil
}

func alloc(t *testing.T, prefix, middle, province, city string, op record.Operator) record.Record {
	t.Helper()
	rec, err := record.New(prefix, middle, province, city, op)
	if err != nil {
		t.Fatalf("record %s%s: %v", prefix, middle, err)
	}
	return rec
}

// --- Tests ---

func TestGenerate_FixedSuffix(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
		alloc(t, "139", "0008", "湖北", "武汉", record.OperatorMobile),
		alloc(t, "138", "0009", "广东", "深圳", record.OperatorMobile),
	}}
	disp := &stubDispatcher{workers: 4}
	arts := &stubArtifacts{}
	svc := New(ix, disp, arts, 0, nil)
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	svc.now = func() time.Time { return at }

	out, err := svc.Generate(context.Background(), Request{
		Prefix:         "138",
		Province:       "湖北",
		City:           "武汉",
		TrailingFixed4: "1234",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Manifest.TotalLines != 1 {
		t.Errorf("TotalLines = %d, want 1", out.Manifest.TotalLines)
	}
	if len(arts.lastLines) != 1 || arts.lastLines[0] != "13800081234" {
		t.Errorf("lines = %v, want [13800081234]", arts.lastLines)
	}
	if disp.lastParts != 4 {
		t.Errorf("partitions = %d, want the worker count 4", disp.lastParts)
	}
	if want := "138_湖北_武汉_1234_20260314_092653"; arts.lastBase != want {
		t.Errorf("base = %q, want %q", arts.lastBase, want)
	}
}

func TestGenerate_FreeSuffixProducesFullRange(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
	}}
	disp := &stubDispatcher{workers: 3}
	arts := &stubArtifacts{}
	svc := New(ix, disp, arts, 0, nil)

	out, err := svc.Generate(context.Background(), Request{
		Prefix: "138", Province: "湖北", City: "武汉",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Manifest.TotalLines != 10000 {
		t.Errorf("TotalLines = %d, want 10000", out.Manifest.TotalLines)
	}
	if len(arts.lastLines) != 10000 {
		t.Fatalf("lines = %d, want 10000", len(arts.lastLines))
	}
	if arts.lastLines[0] != "13800080000" || arts.lastLines[9999] != "13800089999" {
		t.Errorf("range edges = %s .. %s", arts.lastLines[0], arts.lastLines[9999])
	}
}

func TestGenerate_FixedHighSuffix(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
	}}
	arts := &stubArtifacts{}
	svc := New(ix, &stubDispatcher{workers: 2}, arts, 0, nil)

	out, err := svc.Generate(context.Background(), Request{
		Prefix: "138", Province: "湖北", City: "武汉", TrailingFixed3: "567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Manifest.TotalLines != 10 {
		t.Errorf("TotalLines = %d, want 10", out.Manifest.TotalLines)
	}
	if arts.lastLines[0] != "13800085670" || arts.lastLines[9] != "13800085679" {
		t.Errorf("range edges = %s .. %s", arts.lastLines[0], arts.lastLines[9])
	}
}

func TestGenerate_EmptyMatchIsSuccess(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
	}}
	disp := &stubDispatcher{workers: 2}
	arts := &stubArtifacts{}
	svc := New(ix, disp, arts, 0, nil)

	out, err := svc.Generate(context.Background(), Request{
		Prefix: "138", Province: "西藏", City: "拉萨",
	})
	if err != nil {
		t.Fatalf("empty match must not error, got: %v", err)
	}
	if !out.Manifest.IsEmpty() {
		t.Errorf("manifest = %+v, want empty", out.Manifest)
	}
	if disp.called {
		t.Error("dispatcher ran for an empty plan")
	}
	if arts.lastBase != "" {
		t.Error("artifact written for an empty plan")
	}
}

func TestGenerate_LimitCheckedBeforeEnumeration(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
	}}
	disp := &stubDispatcher{workers: 2}
	svc := New(ix, disp, &stubArtifacts{}, 9999, nil)

	_, err := svc.Generate(context.Background(), Request{
		Prefix: "138", Province: "湖北", City: "武汉",
	})
	var limitErr *domain.LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("err = %v, want LimitExceededError", err)
	}
	if limitErr.Count != 10000 || limitErr.Ceiling != 9999 {
		t.Errorf("limit error = %+v, want count 10000 ceiling 9999", limitErr)
	}
	if disp.called {
		t.Error("dispatcher ran despite the limit being exceeded")
	}
}

func TestGenerate_ValidationError(t *testing.T) {
	disp := &stubDispatcher{workers: 2}
	svc := New(&stubIndex{}, disp, &stubArtifacts{}, 0, nil)

	_, err := svc.Generate(context.Background(), Request{
		Prefix: "13", Province: "湖北", City: "武汉",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if disp.called {
		t.Error("dispatcher ran for an invalid request")
	}
}

func TestGenerate_DispatcherErrorPropagates(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
	}}
	disp := &stubDispatcher{workers: 2, err: domain.NewPartition(2, errors.New("slice failed"))}
	arts := &stubArtifacts{}
	svc := New(ix, disp, arts, 0, nil)

	_, err := svc.Generate(context.Background(), Request{
		Prefix: "138", Province: "湖北", City: "武汉", TrailingFixed3: "567",
	})
	if !errors.Is(err, domain.ErrPartitionFailed) {
		t.Fatalf("err = %v, want ErrPartitionFailed", err)
	}
	if arts.lastBase != "" {
		t.Error("artifact written after a failed enumeration")
	}
}

func TestGenerate_WriteErrorPropagates(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
	}}
	svc := New(ix, &stubDispatcher{workers: 2}, &stubArtifacts{writeErr: errors.New("disk full")}, 0, nil)

	_, err := svc.Generate(context.Background(), Request{
		Prefix: "138", Province: "湖北", City: "武汉", TrailingFixed4: "0000",
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want the write failure", err)
	}
}

func TestResolve_NarrowsByPrefixAndForwardsOperators(t *testing.T) {
	ix := &stubIndex{recs: []record.Record{
		alloc(t, "138", "0008", "湖北", "武汉", record.OperatorMobile),
		alloc(t, "138", "0009", "湖北", "武汉", record.OperatorMobile),
		alloc(t, "139", "0008", "湖北", "武汉", record.OperatorMobile),
	}}
	svc := New(ix, &stubDispatcher{workers: 2}, &stubArtifacts{}, 0, nil)

	p, err := svc.Resolve(Request{
		Prefix: "138", Province: "湖北", City: "武汉", Operators: []int{3, 1, 1},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.CandidateCount() != 2 {
		t.Errorf("candidates = %d, want the two 138 blocks", p.CandidateCount())
	}
	want := []record.Operator{record.OperatorMobile, record.OperatorTelecom}
	if len(ix.lastOps) != 2 || ix.lastOps[0] != want[0] || ix.lastOps[1] != want[1] {
		t.Errorf("operators forwarded = %v, want %v", ix.lastOps, want)
	}
}
