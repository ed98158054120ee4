package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahooFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/SHOP.TO":
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			assert.Equal(t, "6mo", r.URL.Query().Get("range"))
			fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1735912800,1735826400,1735999200],
				"indicators":{"quote":[{"open":[2,1,null],"high":[2.5,1.5,null],"low":[1.5,0.5,null],
				"close":[2.2,1.1,null],"volume":[200,100,null]}]}}],"error":null}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
		}
	}))
	defer server.Close()

	f := NewYahooFetcher("")
	f.BaseURL = server.URL

	series, err := f.Fetch(context.Background(), "SHOP.TO", "6mo", "1d")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len(), "null bar dropped")
	assert.Equal(t, 1.1, series.Bars[0].Close, "bars sorted chronologically")
	assert.Equal(t, 2.2, series.Last().Close)
	assert.Equal(t, "SHOP.TO", series.Symbol)

	series, err = f.Fetch(context.Background(), "GONE.TO", "6mo", "1d")
	require.NoError(t, err)
	assert.True(t, series.Empty())
}

func TestYahooFetcher_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()

	f := NewYahooFetcher("")
	f.BaseURL = server.URL
	_, err := f.Fetch(context.Background(), "RY.TO", "6mo", "1d")
	assert.Error(t, err)
}

func TestRESTFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("symbol") != "TD.TO" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `[{"timestamp":1735999200,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10},
			{"timestamp":1735912800,"open":1,"high":2,"low":0.5,"close":1.2,"volume":10}]`)
	}))
	defer server.Close()

	f := NewRESTFetcher(server.URL, "secret", "")
	series, err := f.Fetch(context.Background(), "TD.TO", "6mo", "1d")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 1.5, series.Last().Close)

	series, err = f.Fetch(context.Background(), "NOPE", "6mo", "1d")
	require.NoError(t, err)
	assert.True(t, series.Empty())
}

func TestCSVFetcher_Fetch(t *testing.T) {
	dir := t.TempDir()
	content := "date,open,high,low,close,volume\n" +
		"2024-01-02,10,11,9,10.5,1000\n" +
		"2024-06-28,20,21,19,20.5,1000\n" +
		"2024-07-01,21,22,20,21.5,1000\n" +
		"2024-12-31,30,31,29,30.5,1000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ENB.TO.csv"), []byte(content), 0o644))

	f := NewCSVFetcher(dir)
	series, err := f.Fetch(context.Background(), "ENB.TO", "6mo", "1d")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len(), "bars older than six months are trimmed")
	assert.Equal(t, 21.5, series.Bars[0].Close)
	assert.Equal(t, 30.5, series.Last().Close)

	series, err = f.Fetch(context.Background(), "MISSING.TO", "6mo", "1d")
	require.NoError(t, err)
	assert.True(t, series.Empty())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "BAD.TO.csv"), []byte("date,open,high,low,close,volume\nyesterday,1,1,1,1,1\n"), 0o644))
	_, err = f.Fetch(context.Background(), "BAD.TO", "6mo", "1d")
	assert.Error(t, err)
}
