package recognizer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PhucDaizz/parkledger/internal/recognizer"
	"github.com/stretchr/testify/require"
)

func TestRecognize(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/recognize", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "image.jpg", header.Filename)
		require.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))

		buf := make([]byte, len(payload))
		_, err = file.Read(buf)
		require.NoError(t, err)
		require.Equal(t, payload, buf)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "plates": ["30A-111.11"], "roi": [10, 20, 120, 40]}`))
	}))
	defer srv.Close()

	client := recognizer.New(srv.URL, 0)
	result, err := client.Recognize(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, []string{"30A-111.11"}, result.Plates)
	require.Equal(t, []int{10, 20, 120, 40}, result.ROI)
}

func TestRecognizeNoPlate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "plates": []}`))
	}))
	defer srv.Close()

	client := recognizer.New(srv.URL, 0)
	_, err := client.Recognize(context.Background(), []byte{1})
	require.ErrorIs(t, err, recognizer.ErrNoPlate)
}

func TestRecognizeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "blurry frame"}`))
	}))
	defer srv.Close()

	client := recognizer.New(srv.URL, 0)
	_, err := client.Recognize(context.Background(), []byte{1})
	require.ErrorContains(t, err, "blurry frame")
}

func TestRecognizeHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := recognizer.New(srv.URL, 0)
	_, err := client.Recognize(context.Background(), []byte{1})
	require.ErrorContains(t, err, "500")
}
