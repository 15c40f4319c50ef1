package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infradyn/docextract/constants"
)

func TestClientSubmitAndPoll(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/text-detection/jobs":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "docs", body["bucket"])
			assert.Equal(t, "scan.pdf", body["key"])
			_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})

		case r.Method == http.MethodGet && r.URL.Path == "/v1/text-detection/jobs/job-42":
			resp := PollResponse{Status: constants.JobStatusSucceeded}
			if r.URL.Query().Get("cursor") == "" {
				resp.Blocks = []Block{{Type: BlockLine, Text: "page one"}}
				resp.NextCursor = "c1"
			} else {
				assert.Equal(t, "c1", r.URL.Query().Get("cursor"))
				resp.Blocks = []Block{{Type: BlockLine, Text: "page two"}}
			}
			_ = json.NewEncoder(w).Encode(resp)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret"}, nil)

	jobID, err := c.Submit(context.Background(), "docs", "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "job-42", jobID)
	assert.Equal(t, "Bearer secret", gotAuth)

	first, err := c.Poll(context.Background(), "job-42", "")
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusSucceeded, first.Status)
	assert.Equal(t, "c1", first.NextCursor)

	second, err := c.Poll(context.Background(), "job-42", "c1")
	require.NoError(t, err)
	assert.Empty(t, second.NextCursor)
	require.Len(t, second.Blocks, 1)
	assert.Equal(t, "page two", second.Blocks[0].Text)
}

func TestClientSubmitMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil)
	_, err := c.Submit(context.Background(), "docs", "scan.pdf")
	require.Error(t, err)
}

func TestClientDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-detection/detect", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"blocks": []Block{{Type: BlockLine, Text: "hello"}, {Type: BlockWord, Text: "hello"}},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil)
	blocks, err := c.Detect(context.Background(), "docs", "photo.png")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, BlockLine, blocks[0].Type)
}
