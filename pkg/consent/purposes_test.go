package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
		{
			name:   "quoted next relation",
			header: `</purposes?page=2>; rel="next"`,
			want:   "/purposes?page=2",
		},
		{
			name:   "unquoted next relation",
			header: `</purposes?page=2>; rel=next`,
			want:   "/purposes?page=2",
		},
		{
			name:   "absolute target",
			header: `<https://consent.example.com/purposes?page=2>; rel="next"`,
			want:   "https://consent.example.com/purposes?page=2",
		},
		{
			name:   "next among other relations",
			header: `</purposes?page=1>; rel="first", </purposes?page=3>; rel="next"`,
			want:   "/purposes?page=3",
		},
		{
			name:   "extra params before rel",
			header: `</purposes?page=2>; title="more"; rel="next"`,
			want:   "/purposes?page=2",
		},
		{
			name:   "no next relation",
			header: `</purposes?page=1>; rel="prev"`,
			want:   "",
		},
		{
			name:   "target without angle brackets is ignored",
			header: `/purposes?page=2; rel="next"`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.header))
		})
	}
}

func TestResolveLink(t *testing.T) {
	t.Run("relative target resolves against page URL", func(t *testing.T) {
		resolved, err := resolveLink("http://consent.test/purposes", "/purposes?page=2")
		require.NoError(t, err)
		assert.Equal(t, "http://consent.test/purposes?page=2", resolved)
	})

	t.Run("absolute target passes through", func(t *testing.T) {
		resolved, err := resolveLink("http://consent.test/purposes", "https://other.test/purposes?page=2")
		require.NoError(t, err)
		assert.Equal(t, "https://other.test/purposes?page=2", resolved)
	})

	t.Run("empty target stays empty", func(t *testing.T) {
		resolved, err := resolveLink("http://consent.test/purposes", "")
		require.NoError(t, err)
		assert.Equal(t, "", resolved)
	})
}

func newPurposesClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(baseURL, "test-key")
	require.NoError(t, err)
	return client
}

func TestPurposes_SinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/purposes", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `[{
			"uuid": "p1",
			"name": "Marketing",
			"description": "Email campaigns",
			"legal_basis": "consent",
			"retention_period_days": 30,
			"data_categories": ["email"],
			"is_mandatory": false
		}]`)
	}))
	defer server.Close()

	client := newPurposesClient(t, server.URL)
	purposes, err := client.Purposes(context.Background())
	require.NoError(t, err)

	require.Len(t, purposes, 1)
	assert.Equal(t, Purpose{
		UUID:                "p1",
		Name:                "Marketing",
		Description:         "Email campaigns",
		LegalBasis:          LegalBasisConsent,
		RetentionPeriodDays: 30,
		DataCategories:      []string{"email"},
		IsMandatory:         false,
	}, purposes[0])

	// Idempotence: an unchanged backend yields a value-identical sequence.
	again, err := client.Purposes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, purposes, again)
}

func TestPurposes_EmptyCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newPurposesClient(t, server.URL)
	purposes, err := client.Purposes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, purposes)
	assert.Empty(t, purposes)
}

func TestPurposes_FollowsPagination(t *testing.T) {
	catalog := make([]map[string]any, 5)
	for i := range catalog {
		catalog[i] = map[string]any{
			"uuid":                  fmt.Sprintf("p%d", i+1),
			"name":                  fmt.Sprintf("Purpose %d", i+1),
			"description":           "",
			"legal_basis":           "consent",
			"retention_period_days": 30,
			"data_categories":       []string{"email"},
			"is_mandatory":          false,
		}
	}

	const pageSize = 2
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		start := (page - 1) * pageSize
		end := min(start+pageSize, len(catalog))

		if end < len(catalog) {
			// Relative continuation target, resolved by the client.
			w.Header().Set("Link", fmt.Sprintf(`</purposes?page=%d>; rel="next"`, page+1))
		}
		json.NewEncoder(w).Encode(catalog[start:end])
	}))
	defer server.Close()

	client := newPurposesClient(t, server.URL)
	purposes, err := client.Purposes(context.Background())
	require.NoError(t, err)

	require.Len(t, purposes, len(catalog))
	for i, purpose := range purposes {
		assert.Equal(t, fmt.Sprintf("p%d", i+1), purpose.UUID, "server order must be preserved across pages")
	}
	assert.Equal(t, int32(3), requests.Load(), "five purposes at page size two need three pages")
}

func TestPurposes_ErrorMidWalk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"internal_error","error_description":"page store lost"}`)
			return
		}
		w.Header().Set("Link", `</purposes?page=2>; rel="next"`)
		fmt.Fprint(w, `[{"uuid":"p1","name":"Marketing","legal_basis":"consent"}]`)
	}))
	defer server.Close()

	client := newPurposesClient(t, server.URL)
	purposes, err := client.Purposes(context.Background())
	require.Error(t, err)
	assert.Nil(t, purposes, "a failed walk returns nothing rather than a partial catalog")
	assert.True(t, IsAPI(err))
}

func TestPurposes_RefusesEndlessPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `</purposes>; rel="next"`)
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newPurposesClient(t, server.URL)
	_, err := client.Purposes(context.Background())
	require.Error(t, err)
	assert.True(t, IsContract(err))
	assert.Contains(t, err.Error(), "pagination did not terminate")
}

func TestPurposes_ContractError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// An object where the contract requires a bare array.
		fmt.Fprint(w, `{"purposes": []}`)
	}))
	defer server.Close()

	client := newPurposesClient(t, server.URL)
	_, err := client.Purposes(context.Background())
	require.Error(t, err)
	assert.True(t, IsContract(err))
}
