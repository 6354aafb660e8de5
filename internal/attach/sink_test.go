package attach_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/csb3411-remittance/internal/attach"
)

func TestFileSink_Attach(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	sink := attach.NewFileSink(dir, "order.c34")

	if err := sink.Attach([]byte("first")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := sink.Attach([]byte("second")); err != nil {
		t.Fatalf("attach: %v", err)
	}

	got, err := os.ReadFile(sink.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("content got=%q want=%q", got, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries got=%d want=1 (temporary files left behind)", len(entries))
	}
}

func TestMemorySink_CopiesData(t *testing.T) {
	sink := &attach.MemorySink{}
	data := []byte("abc")
	if err := sink.Attach(data); err != nil {
		t.Fatalf("attach: %v", err)
	}
	data[0] = 'x'

	got := sink.Attachments()
	if len(got) != 1 || string(got[0]) != "abc" {
		t.Fatalf("attachments got=%q", got)
	}
}
