package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

var pdfMagic = []byte("%PDF")

// InspectedFile is an upload that passed the gate: verified PDF, within the
// size limit, hashed. The workflow engine trusts it and never re-validates.
type InspectedFile struct {
	FileName string
	Size     int64
	Hash     string
	Content  []byte
}

type UploadGate interface {
	Inspect(fileName string, r io.Reader) (*InspectedFile, error)
	MaxSize() int64
}

type uploadGate struct {
	log     *logger.Logger
	maxSize int64
}

func NewUploadGate(log *logger.Logger, maxSize int64) UploadGate {
	serviceLog := log.With("service", "UploadGate")
	return &uploadGate{log: serviceLog, maxSize: maxSize}
}

func (ug *uploadGate) MaxSize() int64 {
	return ug.maxSize
}

// Inspect reads the whole upload, enforcing the size cap while reading so a
// lying Content-Length cannot bypass it, checks the %PDF magic bytes, and
// computes the SHA-256 content hash.
func (ug *uploadGate) Inspect(fileName string, r io.Reader) (*InspectedFile, error) {
	fileName = strings.TrimSpace(path.Base(fileName))
	if fileName == "" || fileName == "." {
		return nil, apierr.InvalidInput("missing file name")
	}
	if !strings.EqualFold(path.Ext(fileName), ".pdf") {
		return nil, apierr.InvalidInput("only PDF files are accepted")
	}

	limited := io.LimitReader(r, ug.maxSize+1)
	content, err := io.ReadAll(limited)
	if err != nil {
		return nil, apierr.Unavailable(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(content)) > ug.maxSize {
		return nil, apierr.InvalidInput("file exceeds the maximum size of %d bytes", ug.maxSize)
	}
	if len(content) < len(pdfMagic) || !bytes.HasPrefix(content, pdfMagic) {
		return nil, apierr.InvalidInput("file is not a valid PDF")
	}

	sum := sha256.Sum256(content)
	return &InspectedFile{
		FileName: fileName,
		Size:     int64(len(content)),
		Hash:     hex.EncodeToString(sum[:]),
		Content:  content,
	}, nil
}

// StorageKey builds the canonical object key for a document file:
// documents/{academicYear}/{cycleSlug}/{institutionID}/{documentID}.pdf
func StorageKey(academicYear, cycleSlug string, institutionID, documentID uuid.UUID) string {
	year := strings.ReplaceAll(strings.TrimSpace(academicYear), "/", "-")
	if year == "" {
		year = "unknown"
	}
	if cycleSlug == "" {
		cycleSlug = "unknown"
	}
	return fmt.Sprintf("documents/%s/%s/%s/%s.pdf", year, cycleSlug, institutionID, documentID)
}
