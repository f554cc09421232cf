// Package extract turns uploaded case documents into plain text. Plain
// text files are decoded locally; PDF and DOCX parsing is delegated to a
// separate extraction service configured through EXTRACTOR_URL, since
// binary document parsing does not belong in the evaluation path.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrServiceUnavailable means a PDF/DOCX file was submitted but no
	// extraction service is configured.
	ErrServiceUnavailable = errors.New("document extraction service not configured")

	// ErrEmptyDocument means extraction succeeded but produced no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

// UnsupportedTypeError reports a file extension outside the allowlist.
type UnsupportedTypeError struct {
	Filename string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s (supported: .pdf, .docx, .txt)", e.Filename)
}

// TextExtractor converts a raw uploaded document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

// SupportedFile reports whether the filename carries an accepted extension.
func SupportedFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// Reason returns a short, user-safe description of an extraction error.
func Reason(err error) string {
	var unsupported *UnsupportedTypeError
	switch {
	case errors.As(err, &unsupported):
		return unsupported.Error()
	case errors.Is(err, ErrServiceUnavailable):
		return ErrServiceUnavailable.Error()
	case errors.Is(err, ErrEmptyDocument):
		return ErrEmptyDocument.Error()
	default:
		return "text extraction failed"
	}
}

// Service is the default TextExtractor. remoteURL may be empty, in which
// case only plain text files are accepted.
type Service struct {
	remoteURL string
	client    *http.Client
}

func New(remoteURL string) *Service {
	return &Service{
		remoteURL: strings.TrimRight(remoteURL, "/"),
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// NewFromEnv builds a Service from EXTRACTOR_URL.
func NewFromEnv() *Service {
	return New(os.Getenv("EXTRACTOR_URL"))
}

func (s *Service) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return parsePlainText(data)
	case ".pdf", ".docx":
		if s.remoteURL == "" {
			return "", ErrServiceUnavailable
		}
		return s.extractRemote(ctx, data, filename)
	default:
		return "", &UnsupportedTypeError{Filename: filename}
	}
}

func (s *Service) extractRemote(ctx context.Context, data []byte, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.remoteURL+"/extract", strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("building extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", filepath.Base(filename))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction service returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading extraction response: %w", err)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func parsePlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}
