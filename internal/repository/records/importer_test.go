package records

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/telforge/phonegen/internal/domain/record"
)

const sampleCSV = `prefix,middle,province,city,operator
138,0008,湖北,武汉,1
130,0000,北京,北京,2
199,9999,广东,深圳,3
bad,row
139,0000,上海,上海,9
13,0000,天津,天津,1
`

func writeCSV(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocks.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestImportCSV_SkipsInvalidRows(t *testing.T) {
	s := newTestStore(t)
	im := NewImporter(s, nil)

	res, err := im.ImportCSV(context.Background(), writeCSV(t, []byte(sampleCSV)), false)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Imported != 3 || res.Skipped != 3 {
		t.Errorf("result = %+v, want 3 imported and 3 skipped", res)
	}

	loaded, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("store holds %d records, want 3", len(loaded))
	}
	last := loaded[len(loaded)-1]
	if last.Key() != "1999999" || last.City() != "深圳" || last.Operator() != record.OperatorTelecom {
		t.Errorf("record lost in import: %+v", last)
	}
}

func TestImportCSV_SkipsWhenPopulated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seeded := mustRecord(t, "165", "0000", "虚拟", "虚拟", record.OperatorVirtual)
	if err := s.ReplaceAll(ctx, []record.Record{seeded}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := NewImporter(s, nil).ImportCSV(ctx, writeCSV(t, []byte(sampleCSV)), false)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Imported != 0 {
		t.Errorf("imported %d records into a populated store", res.Imported)
	}

	loaded, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Key() != seeded.Key() {
		t.Error("populated store was modified without force")
	}
}

func TestImportCSV_ForceReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.ReplaceAll(ctx, []record.Record{
		mustRecord(t, "165", "0000", "虚拟", "虚拟", record.OperatorVirtual),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := NewImporter(s, nil).ImportCSV(ctx, writeCSV(t, []byte(sampleCSV)), true)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Imported != 3 {
		t.Errorf("imported = %d, want 3", res.Imported)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3 after forced import", n)
	}
}

func TestImportCSV_GB18030(t *testing.T) {
	utf8CSV := "prefix,middle,province,city,operator\n138,0008,湖北,武汉,1\n"
	encoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewEncoder(), []byte(utf8CSV))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	s := newTestStore(t)
	res, err := NewImporter(s, nil).ImportCSV(context.Background(), writeCSV(t, encoded), false)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("imported = %d, want 1", res.Imported)
	}

	loaded, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if loaded[0].Province() != "湖北" || loaded[0].City() != "武汉" {
		t.Errorf("transcoded record = %+v, want 湖北/武汉", loaded[0])
	}
}

func TestImportCSV_ByteOrderMark(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("prefix,middle,province,city,operator\n138,0008,湖北,武汉,1\n")...)

	s := newTestStore(t)
	res, err := NewImporter(s, nil).ImportCSV(context.Background(), writeCSV(t, data), false)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 0 {
		t.Errorf("result = %+v, want exactly the one data row", res)
	}
}

func TestImportCSV_HeaderOnly(t *testing.T) {
	s := newTestStore(t)

	res, err := NewImporter(s, nil).ImportCSV(context.Background(),
		writeCSV(t, []byte("prefix,middle,province,city,operator\n")), false)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Imported != 0 || res.Skipped != 0 {
		t.Errorf("result = %+v, want zero rows", res)
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	s := newTestStore(t)

	if _, err := NewImporter(s, nil).ImportCSV(context.Background(), writeCSV(t, nil), false); err == nil {
		t.Fatal("expected error for empty csv")
	}
}

func TestImportCSV_MissingFile(t *testing.T) {
	s := newTestStore(t)

	path := filepath.Join(t.TempDir(), "absent.csv")
	if _, err := NewImporter(s, nil).ImportCSV(context.Background(), path, false); err == nil {
		t.Fatal("expected error for missing csv")
	}
}
