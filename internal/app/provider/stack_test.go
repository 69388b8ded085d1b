package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junlend/web/internal/app/store"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/domain/label"
	"github.com/junlend/web/internal/domain/site"
	"github.com/junlend/web/internal/domain/theme"
	"github.com/junlend/web/internal/domain/wallet"
)

func testInput() Input {
	return Input{
		Theme: ThemeScope{Preference: theme.Dark, Attribute: "class", Cookie: "theme", DisableTransitionOnChange: true},
		Wallet: WalletScope{
			Initial: wallet.InitialState{
				Status:  wallet.StatusReconnecting,
				Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
				ChainID: 1,
				Current: "c1",
			},
			ChainIDs: []int64{1},
		},
		Toaster: ToasterScope{
			VisitorID: "v1",
			Toasts: []toast.Toast{{
				ID: "t1", Kind: toast.KindSuccess, Message: "Wallet connected", Seq: 1,
				CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}},
		},
		Page: PageScope{
			Site:     &site.Info{Name: "JunLend"},
			Labels:   label.MustNew("Aave", "Compound", "Morpho", "Fluid", "Euler"),
			PeriodMs: 2500,
		},
	}
}

func TestStack_Order(t *testing.T) {
	s := New(testInput())
	assert.Equal(t, []string{"theme", "store", "wallet", "toaster"}, s.Order())

	got := s.Order()
	got[0] = "mutated"
	assert.Equal(t, "theme", s.Order()[0])
}

func TestStack_InstallAndAccessors(t *testing.T) {
	in := testInput()
	s := New(in)
	ctx := s.Install(context.Background())

	assert.True(t, Installed(ctx))
	assert.Equal(t, theme.Dark, Theme(ctx).Preference)
	assert.Equal(t, "dark", Theme(ctx).ServerClass())
	assert.Equal(t, in.Wallet.Initial, Wallet(ctx).Initial)
	assert.Equal(t, "v1", Toaster(ctx).VisitorID)
	assert.Equal(t, "JunLend", Page(ctx).Site.Name)
	assert.Equal(t, "Aave", Page(ctx).Frame.Label)
	assert.NotNil(t, Store(ctx))

	store.Set(Store(ctx), store.MigrateOpen, true)
	assert.True(t, store.Get(Store(ctx), store.MigrateOpen), "store is shared within one render")
}

func TestAccessors_WithoutStack(t *testing.T) {
	ctx := context.Background()

	assert.False(t, Installed(ctx))
	assert.Equal(t, theme.System, Theme(ctx).Preference)
	assert.Empty(t, Theme(ctx).ServerClass())
	assert.Equal(t, wallet.StatusDisconnected, Wallet(ctx).Initial.Status)
	assert.Empty(t, Toaster(ctx).Toasts)
	assert.False(t, store.Get(Store(ctx), store.MigrateOpen))
}

func TestNew_Defaults(t *testing.T) {
	s := New(Input{Theme: ThemeScope{Preference: "sepia"}})
	snap := s.Snapshot()

	assert.Equal(t, theme.System, snap.Theme.Preference)
	assert.Equal(t, "class", snap.Theme.Attribute)
	assert.True(t, snap.Theme.ClientOwned)
	assert.NotNil(t, snap.Toasts)
	assert.NotNil(t, snap.Rotation.Labels)
	assert.Contains(t, snap.Store, "migrateOpen")
}

func TestSnapshotJSON_Deterministic(t *testing.T) {
	first, err := New(testInput()).SnapshotJSON()
	require.NoError(t, err)
	second, err := New(testInput()).SnapshotJSON()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), `"status":"reconnecting"`)
	assert.Contains(t, string(first), `"label":"Aave"`)
	assert.Contains(t, string(first), `"order":["theme","store","wallet","toaster"]`)
}
