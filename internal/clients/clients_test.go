package clients_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cierres/internal/clients"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

func TestNewClient(t *testing.T) {
	type testCase struct {
		name      string
		inName    string
		inColor   string
		want      clients.Client
		wantValid bool
	}

	tests := []testCase{
		{
			name:      "Normalised",
			inName:    "  El Corte Inglés ",
			inColor:   "#abc",
			want:      clients.Client{ID: "el-corte-ingl-s", Name: "EL CORTE INGLÉS", Color: "#abc"},
			wantValid: true,
		},
		{
			name:      "Default color",
			inName:    "dia",
			want:      clients.Client{ID: "dia", Name: "DIA", Color: clients.DefaultColor},
			wantValid: true,
		},
		{
			name:    "Bad color",
			inName:  "dia",
			inColor: "red",
			want:    clients.Client{ID: "dia", Name: "DIA", Color: "red"},
		},
		{
			name:   "Empty name",
			inName: "   ",
			want:   clients.Client{Color: clients.DefaultColor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clients.NewClient(tt.inName, tt.inColor)
			assert.Equal(t, tt.want, got)

			err := got.Validate()
			if tt.wantValid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, clients.ErrInvalid)
			}
		})
	}
}

func TestService_DefaultsWhenMissing(t *testing.T) {
	svc, err := clients.NewService(filepath.Join(t.TempDir(), "clients.yaml"))
	require.NoError(t, err)

	assert.Equal(t, clients.Defaults, svc.List())
}

func TestService_AddRemovePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "clients.yaml")

	svc, err := clients.NewService(path)
	require.NoError(t, err)

	c, err := svc.Add("Mercadona", "#00aa00")
	require.NoError(t, err)
	assert.Equal(t, "mercadona", c.ID)

	_, err = svc.Add("MERCADONA", "")
	require.ErrorIs(t, err, clients.ErrDuplicate)

	_, err = svc.Add("Dia", "blue")
	require.ErrorIs(t, err, clients.ErrInvalid)

	require.NoError(t, svc.Remove("basicfit"))
	require.ErrorIs(t, svc.Remove("basicfit"), clients.ErrNotFound)

	reloaded, err := clients.NewService(path)
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, c := range reloaded.List() {
		ids = append(ids, c.ID)
	}

	assert.Equal(t, []string{"alimerka", "carrefour", "mercadona"}, ids)

	got, err := reloaded.Get("mercadona")
	require.NoError(t, err)
	assert.Equal(t, "#00aa00", got.Color)
}

func TestService_LoadSkipsInvalidAndDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`clients:
  - name: alimerka
    color: "#10b981"
  - name: ALIMERKA
    color: "#000000"
  - name: ""
    color: "#fff"
  - name: Eroski
    color: nope
`), 0o644))

	svc, err := clients.NewService(path)
	require.NoError(t, err)

	assert.Equal(t, []clients.Client{{ID: "alimerka", Name: "ALIMERKA", Color: "#10b981"}}, svc.List())
}

func TestService_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clients: [::"), 0o644))

	_, err := clients.NewService(path)
	require.Error(t, err)
}

func TestBuildDashboard(t *testing.T) {
	s := snapshot.New("Marzo 2024", "m.xlsx", []snapshot.Row{
		{Center: "Centro A", ClientName: "Alimerka S.A.", Revenue: 100, Cost: 80, Margin: 20},
		{Center: "Centro B", Name: "Obra ALIMERKA Gijón", Revenue: 300, Cost: 200, Margin: 100},
		{Center: "Centro A", ClientName: "CARREFOUR", Revenue: 1000, Cost: 900, Margin: 100},
	}, time.Now())

	d := clients.BuildDashboard(s, clients.Defaults[0])

	require.Len(t, d.Rows, 2)
	assert.InDelta(t, 400.0, d.Totals.Revenue, 1e-9)
	assert.InDelta(t, 30.0, d.MarginPct, 1e-9)
	assert.Equal(t, []clients.CenterRevenue{
		{Center: "Centro B", Revenue: 300, Margin: 100},
		{Center: "Centro A", Revenue: 100, Margin: 20},
	}, d.Centers)

	empty := clients.BuildDashboard(s, clients.Defaults[2])
	assert.Empty(t, empty.Rows)
	assert.Empty(t, empty.Centers)
	assert.InDelta(t, 0.0, empty.MarginPct, 1e-9)
}
