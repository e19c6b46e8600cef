package record_test

import (
	"testing"
	"time"

	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
)

func TestAttachmentInsertionOrder(t *testing.T) {
	a := record.NewAttachment()
	a.Set("b", 1)
	a.Set("a", 2)
	a.Set("c", 3)
	a.Set("a", 4) // 覆盖值，位置不变

	wantKeys := []string{"b", "a", "c"}
	gotKeys := a.Keys()
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("Keys() = %v, want %v", gotKeys, wantKeys)
	}
	for i, k := range wantKeys {
		if gotKeys[i] != k {
			t.Errorf("Keys()[%d] = %q, want %q", i, gotKeys[i], k)
		}
	}

	if v, _ := a.Get("a"); v != 4 {
		t.Errorf("Get(a) = %v, want 4 (last write wins)", v)
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}
}

func TestAttachmentNilSafety(t *testing.T) {
	var a *record.Attachment

	if a.Len() != 0 {
		t.Error("nil attachment Len should be 0")
	}
	if _, ok := a.Get("x"); ok {
		t.Error("nil attachment Get should miss")
	}
	if keys := a.Keys(); keys != nil {
		t.Errorf("nil attachment Keys = %v, want nil", keys)
	}
	a.Range(func(string, any) bool {
		t.Error("nil attachment Range should not call fn")
		return true
	})

	cloned := a.Clone()
	if cloned == nil {
		t.Fatal("Clone of nil should return empty attachment")
	}
	cloned.Set("k", "v")
	if cloned.Len() != 1 {
		t.Error("cloned attachment should be usable")
	}
}

func TestAttachmentMerge(t *testing.T) {
	a := record.NewAttachment()
	a.Set("x", 1)
	a.Set("y", 2)

	b := record.NewAttachment()
	b.Set("y", 20)
	b.Set("z", 30)

	a.Merge(b)

	wantKeys := []string{"x", "y", "z"}
	for i, k := range a.Keys() {
		if k != wantKeys[i] {
			t.Errorf("after merge Keys()[%d] = %q, want %q", i, k, wantKeys[i])
		}
	}
	if v, _ := a.Get("y"); v != 20 {
		t.Errorf("merged value y = %v, want 20", v)
	}
}

func TestRecordFieldAccess(t *testing.T) {
	attach := record.NewAttachment()
	attach.Set("context", "req=42")
	attach.Set("extra_kvs", "user=alice")
	attach.Set("user", "alice")

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := record.New("app.worker", level.Info, "job done", nil, attach, record.WithTime(ts))

	tests := []struct {
		field string
		want  any
	}{
		{record.FieldTime, ts},
		{record.FieldLevel, level.Info},
		{record.FieldLogger, "app.worker"},
		{record.FieldMessage, "job done"},
		{"context", "req=42"},
		{"extra_kvs", "user=alice"},
		{"user", "alice"},
	}
	for _, tt := range tests {
		got, ok := r.Field(tt.field)
		if !ok {
			t.Errorf("Field(%q) not found", tt.field)
			continue
		}
		if got != tt.want {
			t.Errorf("Field(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}

	if _, ok := r.Field("missing"); ok {
		t.Error("Field(missing) should not resolve")
	}
}

func TestRecordBuiltinShadowsAttachment(t *testing.T) {
	attach := record.NewAttachment()
	attach.Set(record.FieldLogger, "smuggled")

	r := record.New("real.name", level.Debug, "msg", nil, attach)

	got, _ := r.Field(record.FieldLogger)
	if got != "real.name" {
		t.Errorf("built-in field should shadow attachment key, got %v", got)
	}
	// 附件中的同名键仍可通过附件本身访问
	if v, _ := r.Attachment().Get(record.FieldLogger); v != "smuggled" {
		t.Errorf("attachment key should remain reachable via Attachment(), got %v", v)
	}
}

func TestRecordMessageFormatting(t *testing.T) {
	r := record.New("fmt", level.Info, "hello %s, n=%d", []any{"world", 7}, nil)
	if got := r.Message(); got != "hello world, n=7" {
		t.Errorf("Message() = %q", got)
	}

	// args 为空时 % 字面量原样保留
	plain := record.New("fmt", level.Info, "100% done", nil, nil)
	if got := plain.Message(); got != "100% done" {
		t.Errorf("Message() = %q, want literal percent preserved", got)
	}
}

func TestRecordCopiesAttachment(t *testing.T) {
	attach := record.NewAttachment()
	attach.Set("k", "before")

	r := record.New("immut", level.Info, "msg", nil, attach)
	attach.Set("k", "after")
	attach.Set("new", true)

	if v, _ := r.Field("k"); v != "before" {
		t.Errorf("record should hold snapshot, got %v", v)
	}
	if _, ok := r.Field("new"); ok {
		t.Error("keys added after construction should not appear")
	}
}

func TestRecordCallerCapture(t *testing.T) {
	r := record.New("caller", level.Info, "msg", nil, nil)
	if r.File() == "" || r.Line() == 0 {
		t.Errorf("caller location not captured: file=%q line=%d", r.File(), r.Line())
	}
	if r.PID() == 0 {
		t.Error("pid should be captured")
	}
}
