package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestUploadGateInspect(t *testing.T) {
	gate := NewUploadGate(testLogger(t), 1024)

	content := []byte("%PDF-1.7 fake body")
	got, err := gate.Inspect("thesis.pdf", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if got.FileName != "thesis.pdf" {
		t.Fatalf("FileName = %q", got.FileName)
	}
	if got.Size != int64(len(content)) {
		t.Fatalf("Size = %d, want %d", got.Size, len(content))
	}
	sum := sha256.Sum256(content)
	if got.Hash != hex.EncodeToString(sum[:]) {
		t.Fatalf("Hash = %q", got.Hash)
	}
}

func TestUploadGateRejects(t *testing.T) {
	gate := NewUploadGate(testLogger(t), 64)

	cases := []struct {
		name     string
		fileName string
		content  string
	}{
		{"wrong extension", "thesis.docx", "%PDF-1.7 body"},
		{"missing magic bytes", "thesis.pdf", "PK\x03\x04 zip content"},
		{"empty file", "thesis.pdf", ""},
		{"over size limit", "thesis.pdf", "%PDF" + strings.Repeat("a", 100)},
		{"empty name", "", "%PDF-1.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gate.Inspect(tc.fileName, strings.NewReader(tc.content))
			if err == nil {
				t.Fatalf("Inspect accepted %s", tc.name)
			}
			if !apierr.HasCode(err, apierr.CodeInvalidInput) {
				t.Fatalf("err code = %q, want %q", apierr.CodeOf(err), apierr.CodeInvalidInput)
			}
		})
	}
}

func TestUploadGateStripsPath(t *testing.T) {
	gate := NewUploadGate(testLogger(t), 1024)

	got, err := gate.Inspect("../../etc/thesis.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if got.FileName != "thesis.pdf" {
		t.Fatalf("FileName = %q, want path stripped", got.FileName)
	}
}

func TestStorageKey(t *testing.T) {
	instID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	docID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	got := StorageKey("2023/2024", "master", instID, docID)
	want := "documents/2023-2024/master/" + instID.String() + "/" + docID.String() + ".pdf"
	if got != want {
		t.Fatalf("StorageKey = %q, want %q", got, want)
	}

	if got := StorageKey("", "", instID, docID); !strings.HasPrefix(got, "documents/unknown/unknown/") {
		t.Fatalf("StorageKey with empty parts = %q", got)
	}
}
