package portal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(ClientOptions{
		BaseURL:           baseURL,
		RequestsPerSecond: 1000,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestClientSearch(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"land_abk": r.PostFormValue("land_abk"),
			"ger_name": r.PostFormValue("ger_name"),
			"order_by": r.PostFormValue("order_by"),
		}
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		io.WriteString(w, resultPageFixture)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	listings, err := client.Search(context.Background(), Land{Code: "sn", Name: "Sachsen"})
	require.NoError(t, err)

	assert.Equal(t, "sn", gotForm["land_abk"])
	assert.Equal(t, "-- Alle Amtsgerichte --", gotForm["ger_name"])
	assert.Equal(t, "2", gotForm["order_by"])

	// The fixture holds three entries; the one without a parseable termin
	// is skipped.
	require.Len(t, listings, 2)
	assert.Equal(t, "4711", listings[0].ID)
	assert.Equal(t, "sn/0123 K 0099/2024", listings[1].ID)
	assert.Equal(t, "Sachsen", listings[0].State)
}

func TestClientSearchLatin1Response(t *testing.T) {
	// "Gänseweg 4, 04109 Leipzig" with the a umlaut as a single 0xE4 byte.
	page := []byte(`<html><body><table>
<tr><td>Aktenzeichen:</td><td>0123 K 0001/2024</td></tr>
<tr><td>Objekt/Lage:</td><td>Haus, G` + "\xe4" + `nseweg 4, 04109 Leipzig</td></tr>
<tr><td>Termin:</td><td>Montag, 07. August 2025, 10:00 Uhr</td></tr>
</table></body></html>`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		w.Write(page)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	listings, err := client.Search(context.Background(), Land{Code: "sn", Name: "Sachsen"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Gänseweg", listings[0].Street)
}

func TestClientSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaputt", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.Search(context.Background(), Land{Code: "sn", Name: "Sachsen"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestClientSearchContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(t, "http://localhost:1")
	_, err := client.Search(ctx, Land{Code: "sn", Name: "Sachsen"})
	assert.Error(t, err)
}

func TestClientSearchStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		var caseNumber string
		switch r.PostFormValue("land_abk") {
		case "be":
			caseNumber = "0001 K 0001/2024"
		case "hh":
			caseNumber = "0002 K 0002/2024"
		}
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		io.WriteString(w, `<html><body><table>
<tr><td>Aktenzeichen:</td><td>`+caseNumber+`</td></tr>
<tr><td>Termin:</td><td>Montag, 07. August 2025, 10:00 Uhr</td></tr>
</table></body></html>`)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	results, err := client.SearchStates(context.Background(), []Land{
		{Code: "be", Name: "Berlin"},
		{Code: "hh", Name: "Hamburg"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Len(t, results[0], 1)
	require.Len(t, results[1], 1)
	assert.Equal(t, "be/0001 K 0001/2024", results[0][0].ID, "results keep input state order")
	assert.Equal(t, "hh/0002 K 0002/2024", results[1][0].ID)
}
