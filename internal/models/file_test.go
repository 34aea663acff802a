package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRemoteFile_JSONShape(t *testing.T) {
	payload := `{"name":"report.pdf","size":2048,"date":1756500000000,"dateStr":"2026-08-29 22:00"}`

	var f RemoteFile
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Name != "report.pdf" || f.Size != 2048 {
		t.Errorf("file = %+v", f)
	}
	if f.DateStr != "2026-08-29 22:00" {
		t.Errorf("dateStr = %q", f.DateStr)
	}
}

func TestRemoteFile_ModifiedAt(t *testing.T) {
	// Date is epoch milliseconds.
	f := RemoteFile{Date: 1756500000000}
	want := time.UnixMilli(1756500000000)
	if !f.ModifiedAt().Equal(want) {
		t.Errorf("ModifiedAt = %v, want %v", f.ModifiedAt(), want)
	}
}

func TestStatusResponse_JSONShape(t *testing.T) {
	payload := `{"success":false,"message":"disk full","count":0}`

	var s StatusResponse
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Success || s.Message != "disk full" {
		t.Errorf("status = %+v", s)
	}
}
