package httpapi

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, server *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleListFiles(t *testing.T) {
	docs := newCollection()
	addDoc(t, docs, "guide_md", "guide.md", "install steps")
	server := newTestServer(t, &Ports{Documents: docs})

	rec := do(t, server, http.MethodGet, "/api/list-files", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"files": [{"id": "guide_md", "name": "guide.md", "summary": "about guide.md", "topics": []}]
	}`, rec.Body.String())
}

func TestHandleUploadFile(t *testing.T) {
	t.Run("rejects unsupported extension", func(t *testing.T) {
		server := newTestServer(t, &Ports{Documents: newCollection()})

		rec := upload(t, server, "report.pdf", "%PDF-1.4")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeJSON(t, rec)["detail"], ".txt and .md")
	})

	t.Run("rejects missing file", func(t *testing.T) {
		server := newTestServer(t, &Ports{Documents: newCollection()})

		rec := do(t, server, http.MethodPost, "/api/upload-file", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		server := newTestServer(t, &Ports{Documents: newCollection()})

		rec := upload(t, server, "blank.txt", "  \n ")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("default description without summariser", func(t *testing.T) {
		docs := newCollection()
		server := newTestServer(t, &Ports{Documents: docs})

		rec := upload(t, server, "notes.v2.md", "# Notes\n\nRemember the milk.")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeJSON(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "notes_v2_md", body["doc_id"])

		doc, err := docs.Get(context.Background(), "notes_v2_md")
		require.NoError(t, err)
		assert.Equal(t, "notes.v2.md", doc.Name)
		assert.Equal(t, "Uploaded file: notes.v2.md", doc.Description)
	})

	t.Run("summariser writes description", func(t *testing.T) {
		docs := newCollection()
		summariser := &mockSummariser{summary: "  A shopping reminder.  "}
		server := newTestServer(t, &Ports{Documents: docs, Summariser: summariser})

		rec := upload(t, server, "todo.txt", "buy milk")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, summariser.calls)
		assert.Equal(t, "buy milk", summariser.content)
		doc, err := docs.Get(context.Background(), "todo_txt")
		require.NoError(t, err)
		assert.Equal(t, "A shopping reminder.", doc.Description)
		metadata := decodeJSON(t, rec)["metadata"].(map[string]any)
		assert.Equal(t, "A shopping reminder.", metadata["summary"])
	})

	t.Run("summariser failure falls back", func(t *testing.T) {
		docs := newCollection()
		server := newTestServer(t, &Ports{Documents: docs, Summariser: &mockSummariser{err: errors.New("quota")}})

		rec := upload(t, server, "todo.txt", "buy milk")

		require.Equal(t, http.StatusOK, rec.Code)
		doc, err := docs.Get(context.Background(), "todo_txt")
		require.NoError(t, err)
		assert.Equal(t, "Uploaded file: todo.txt", doc.Description)
	})

	t.Run("large file is split into parts", func(t *testing.T) {
		docs := newCollection()
		server := newTestServer(t, &Ports{Documents: docs})
		content := strings.Repeat("word ", 2*uploadPartSize/5) + "tail"

		rec := upload(t, server, "big.txt", content)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeJSON(t, rec)
		assert.Equal(t, "big_txt", body["doc_id"])
		metadata := body["metadata"].(map[string]any)
		assert.Equal(t, float64(3), metadata["parts"])
		assert.Equal(t, []any{"big_txt_part_1", "big_txt_part_2", "big_txt_part_3"}, metadata["doc_ids"])

		_, err := docs.Get(context.Background(), "big_txt")
		assert.Error(t, err, "the base id is not stored")
		part, err := docs.Get(context.Background(), "big_txt_part_2")
		require.NoError(t, err)
		assert.Equal(t, "big.txt (Part 2/3)", part.Name)
		assert.Equal(t, "Uploaded file: big.txt [Part 2 of 3]", part.Description)
		assert.Len(t, []rune(part.Content), uploadPartSize)
		last, err := docs.Get(context.Background(), "big_txt_part_3")
		require.NoError(t, err)
		assert.Equal(t, "tail", last.Content)
	})
}

func TestSplitRunes(t *testing.T) {
	assert.Nil(t, splitRunes("", 3))
	assert.Equal(t, []string{"abc"}, splitRunes("abc", 3))
	assert.Equal(t, []string{"ab", "cd", "e"}, splitRunes("abcde", 2))
	assert.Equal(t, []string{"日本", "語"}, splitRunes("日本語", 2))
}
