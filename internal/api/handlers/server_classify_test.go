package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/normalizer"
)

func TestClassify(t *testing.T) {
	r := newTestRouter(newTestServer(seededStore(t), nil, 0))

	body := map[string]any{"rows": []map[string]any{
		{"name": "dc01", "host_cluster": "prod", "os_primary": "Microsoft Windows Server 2022 (64-bit)"},
		{"name": "legacy", "os_primary": "MS-DOS 6.22"},
		{"name": "blank", "os_primary": ""},
		{"name": "fallback", "os_primary": "", "os_fallback": "Ubuntu 18.04"},
	}}
	w := do(r, http.MethodPost, "/api/v1/classify", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp classifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 4)

	assert.Equal(t, "dc01", resp.Results[0].Name)
	assert.Equal(t, "prod", resp.Results[0].HostCluster)
	assert.Equal(t, domain.TierOfficiallySupported, resp.Results[0].Tier)
	assert.Equal(t, domain.TierOfficiallySupported.Color(), resp.Results[0].TierColor)
	assert.Equal(t, domain.TierNotSupported, resp.Results[1].Tier)
	assert.Equal(t, domain.TierNeedsInfo, resp.Results[2].Tier)
	assert.Equal(t, domain.TierUnofficiallySupported, resp.Results[3].Tier)
	require.NotNil(t, resp.Results[3].Notes)
	assert.Contains(t, *resp.Results[3].Notes, "used fallback column")

	assert.Equal(t, 4, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Counts[domain.TierOfficiallySupported])
	assert.Equal(t, 0, resp.Summary.Counts[domain.TierSupportedVDI])
	assert.InDelta(t, 25.0, resp.Summary.Percent[domain.TierNeedsInfo], 0.001)

	var header domain.Summary
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get(SummaryHeader)), &header))
	assert.Equal(t, resp.Summary, header)
}

func TestClassify_Rejections(t *testing.T) {
	r := newTestRouter(newTestServer(seededStore(t), nil, 2))

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "empty batch",
			body:   map[string]any{"rows": []any{}},
			status: http.StatusBadRequest,
			code:   "EMPTY_BATCH",
		},
		{
			name: "too many rows",
			body: map[string]any{"rows": []map[string]any{
				{"name": "a"}, {"name": "b"}, {"name": "c"},
			}},
			status: http.StatusRequestEntityTooLarge,
			code:   "BATCH_TOO_LARGE",
		},
		{
			name:   "malformed json",
			body:   `{"rows": [`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/classify", "", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w)["code"])
			}
		})
	}
}

func TestClassify_SkipsRowsWithoutName(t *testing.T) {
	r := newTestRouter(newTestServer(seededStore(t), nil, 0))

	body := map[string]any{"rows": []map[string]any{
		{"name": "dc01", "os_primary": "Microsoft Windows Server 2022 (64-bit)"},
		{"name": "", "os_primary": "RHEL 9"},
		{"name": "   ", "os_primary": "RHEL 9"},
		{"os_primary": "RHEL 9"},
		{"name": "db02", "os_primary": "MS-DOS 6.22"},
	}}
	w := do(r, http.MethodPost, "/api/v1/classify", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp classifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "dc01", resp.Results[0].Name)
	assert.Equal(t, domain.TierOfficiallySupported, resp.Results[0].Tier)
	assert.Equal(t, "db02", resp.Results[1].Name)
	assert.Equal(t, domain.TierNotSupported, resp.Results[1].Tier)
	assert.Equal(t, 3, resp.SkippedRows)
	assert.Equal(t, 2, resp.Summary.Total)
}

func TestClassify_AllRowsWithoutName(t *testing.T) {
	r := newTestRouter(newTestServer(seededStore(t), nil, 0))

	body := map[string]any{"rows": []map[string]any{{"name": ""}, {"name": " "}}}
	w := do(r, http.MethodPost, "/api/v1/classify", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp classifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
	assert.Equal(t, 2, resp.SkippedRows)
	assert.Equal(t, 0, resp.Summary.Total)
}

func TestNamedRows(t *testing.T) {
	rows, skipped := namedRows([]domain.VMInputRow{
		{Name: "a"},
		{Name: " "},
		{Name: "c", RowIndex: 41},
		{Name: "d"},
	})
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{0, 41, 3}, []int{rows[0].RowIndex, rows[1].RowIndex, rows[2].RowIndex})
}

func TestNormalize(t *testing.T) {
	r := newTestRouter(newTestServer(seededStore(t), nil, 0))

	w := do(r, http.MethodPost, "/api/v1/normalize", "", map[string]string{"os": "Microsoft Windows Server 2019 (64-bit)"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got normalizer.NormalizedOS
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Windows Server", got.Family)
	assert.Equal(t, "2019", got.Version)
	assert.Equal(t, "Windows Server 2019", got.Interpreted)
	assert.False(t, got.LowConfidence)

	w = do(r, http.MethodPost, "/api/v1/normalize", "", map[string]string{"os": ""})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.LowConfidence)
	assert.Equal(t, normalizer.Unknown, got.Interpreted)
}

func TestListTiers(t *testing.T) {
	r := newTestRouter(newTestServer(seededStore(t), nil, 0))

	w := do(r, http.MethodGet, "/api/v1/tiers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tiers []domain.TierInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tiers))
	require.Len(t, tiers, len(domain.AllTiers))
	assert.Equal(t, domain.AllTiers[0], tiers[0].Key)
	assert.NotEmpty(t, tiers[0].Color)
}
