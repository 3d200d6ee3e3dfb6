package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

const (
	// uploadPartSize is the largest upload stored as a single document, in characters.
	uploadPartSize = 50000

	// summaryContextSize bounds the text sent to the summariser, in characters.
	summaryContextSize = 100000

	// summaryMaxLength is the summary length requested from the summariser.
	summaryMaxLength = 200

	maxUploadBytes = 64 << 20
)

// uploadExtensions are the file types accepted by /api/upload-file.
var uploadExtensions = map[string]bool{".txt": true, ".md": true}

type fileInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
}

type uploadMetadata struct {
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
	Parts   int      `json:"parts,omitempty"`
	DocIDs  []string `json:"doc_ids,omitempty"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	docs := s.ports.Documents.List(r.Context())
	files := make([]fileInfo, len(docs))
	for i, d := range docs {
		files[i] = fileInfo{ID: d.ID, Name: d.Name, Summary: d.Description, Topics: []string{}}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"files":   files,
	})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing field: file")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !uploadExtensions[strings.ToLower(filepath.Ext(name))] {
		writeError(w, http.StatusBadRequest, "Only .txt and .md files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}
	text := strings.ToValidUTF8(string(data), "�")
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyContent.Error())
		return
	}
	docID := domain.DocIDForName(name)
	description := s.describe(r, name, text)

	parts := splitRunes(text, uploadPartSize)
	if len(parts) <= 1 {
		if _, err := s.addUpload(r, docID, name, description, text); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"doc_id":   docID,
			"metadata": uploadMetadata{Summary: description, Topics: []string{}},
		})
		return
	}

	logger.Info("Splitting %s (%d chars) into %d parts", name, len([]rune(text)), len(parts))
	ids := make([]string, 0, len(parts))
	for i, part := range parts {
		n := i + 1
		partID := fmt.Sprintf("%s_part_%d", docID, n)
		partName := fmt.Sprintf("%s (Part %d/%d)", name, n, len(parts))
		partDesc := fmt.Sprintf("%s [Part %d of %d]", description, n, len(parts))
		if _, err := s.addUpload(r, partID, partName, partDesc, part); err != nil {
			writeErr(w, err)
			return
		}
		ids = append(ids, partID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"doc_id":  docID,
		"metadata": uploadMetadata{
			Summary: description,
			Topics:  []string{},
			Parts:   len(parts),
			DocIDs:  ids,
		},
	})
}

func (s *Server) addUpload(r *http.Request, id, name, description, content string) (*domain.DocumentSummary, error) {
	semantic := true
	return s.ports.Documents.Add(r.Context(), driving.AddDocumentRequest{
		ID:          id,
		Name:        name,
		Description: description,
		Content:     content,
		Semantic:    &semantic,
	})
}

// describe asks the summariser for a description, falling back to a
// fixed one when no summariser is configured or it fails.
func (s *Server) describe(r *http.Request, name, text string) string {
	fallback := "Uploaded file: " + name
	if s.ports.Summariser == nil {
		return fallback
	}

	excerpt := text
	if parts := splitRunes(text, summaryContextSize); len(parts) > 0 {
		excerpt = parts[0]
	}
	summary, err := s.ports.Summariser.Summarise(r.Context(), excerpt, summaryMaxLength)
	if err != nil {
		logger.Warn("Failed to summarise %s: %v", name, err)
		return fallback
	}
	if summary = strings.TrimSpace(summary); summary == "" {
		return fallback
	}
	return summary
}

// splitRunes cuts s into pieces of at most size characters.
func splitRunes(s string, size int) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	parts := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
