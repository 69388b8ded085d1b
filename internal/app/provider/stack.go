// Package provider composes the request-scoped contexts the page shell renders from.
package provider

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/junlend/web/internal/app/rotation"
	"github.com/junlend/web/internal/app/store"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/domain/label"
	"github.com/junlend/web/internal/domain/site"
	"github.com/junlend/web/internal/domain/theme"
	"github.com/junlend/web/internal/domain/wallet"
)

// Provider names, outermost first.
const (
	NameTheme   = "theme"
	NameStore   = "store"
	NameWallet  = "wallet"
	NameToaster = "toaster"
)

// order is the fixed nesting: theme wraps store wraps wallet wraps content,
// and the toaster is a sibling of the content inside the theme scope.
var order = []string{NameTheme, NameStore, NameWallet, NameToaster}

// ThemeScope is the theme context value.
type ThemeScope struct {
	Preference theme.Preference
	Attribute  string // "class" or "data-theme"
	Cookie     string
	// DisableTransitionOnChange suppresses CSS transitions while the class switches.
	DisableTransitionOnChange bool
}

// ServerClass returns the theme class the server renders, empty for system.
func (t ThemeScope) ServerClass() string {
	return t.Preference.ServerClass()
}

// WalletScope is the wallet context value, seeded once from the request cookie.
type WalletScope struct {
	Initial  wallet.InitialState
	ChainIDs []int64
}

// ToasterScope is the toaster context value.
type ToasterScope struct {
	VisitorID string
	Toasts    []toast.Toast
}

// PageScope carries the content inputs that are not providers.
type PageScope struct {
	Site     *site.Info
	Page     string
	Labels   label.Set
	Frame    rotation.Frame
	PeriodMs int64
}

// Input holds everything a stack is built from.
type Input struct {
	Theme   ThemeScope
	Store   *store.Store
	Wallet  WalletScope
	Toaster ToasterScope
	Page    PageScope
}

// Stack is the provider composition for one render.
type Stack struct {
	theme   ThemeScope
	store   *store.Store
	wallet  WalletScope
	toaster ToasterScope
	page    PageScope
}

// New builds a stack. A nil store gets a fresh shell store and an empty label
// set is left empty so the frame stays the zero value.
func New(in Input) *Stack {
	if in.Store == nil {
		in.Store = store.NewShell()
	}
	if !in.Theme.Preference.Valid() {
		in.Theme.Preference = theme.System
	}
	if in.Theme.Attribute == "" {
		in.Theme.Attribute = "class"
	}
	if !in.Page.Labels.IsZero() && in.Page.Frame.Key == "" {
		in.Page.Frame = rotation.InitialFrame(in.Page.Labels)
	}
	return &Stack{
		theme:   in.Theme,
		store:   in.Store,
		wallet:  in.Wallet,
		toaster: in.Toaster,
		page:    in.Page,
	}
}

// Order returns the provider names from outermost to innermost.
func (s *Stack) Order() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Install returns ctx with every provider value installed in nesting order.
func (s *Stack) Install(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, pageKey{}, s.page)
	for _, name := range order {
		switch name {
		case NameTheme:
			ctx = context.WithValue(ctx, themeKey{}, s.theme)
		case NameStore:
			ctx = context.WithValue(ctx, storeKey{}, s.store)
		case NameWallet:
			ctx = context.WithValue(ctx, walletKey{}, s.wallet)
		case NameToaster:
			ctx = context.WithValue(ctx, toasterKey{}, s.toaster)
		}
	}
	return ctx
}

// Snapshot is the hydration document embedded in the page.
// Field order is fixed, so encoding is deterministic for equal inputs.
type Snapshot struct {
	Theme    ThemeSnapshot       `json:"theme"`
	Store    map[string]any      `json:"store"`
	Wallet   wallet.InitialState `json:"wallet"`
	Toasts   []toast.Toast       `json:"toasts"`
	Rotation RotationSnapshot    `json:"rotation"`
	Order    []string            `json:"order"`
}

// ThemeSnapshot describes the theme region the client takes over.
type ThemeSnapshot struct {
	Preference theme.Preference `json:"preference"`
	Attribute  string           `json:"attribute"`
	Cookie     string           `json:"cookie"`
	// ClientOwned marks the theme attribute as resolved by the client, so a
	// server/client difference there is expected.
	ClientOwned bool `json:"clientOwned"`
}

// RotationSnapshot is the label rotation state at first paint.
type RotationSnapshot struct {
	Labels   []string       `json:"labels"`
	PeriodMs int64          `json:"periodMs"`
	Frame    rotation.Frame `json:"frame"`
}

// Snapshot returns the hydration document.
func (s *Stack) Snapshot() Snapshot {
	toasts := s.toaster.Toasts
	if toasts == nil {
		toasts = []toast.Toast{}
	}
	labels := s.page.Labels.Labels()
	if labels == nil {
		labels = []string{}
	}
	return Snapshot{
		Theme: ThemeSnapshot{
			Preference:  s.theme.Preference,
			Attribute:   s.theme.Attribute,
			Cookie:      s.theme.Cookie,
			ClientOwned: true,
		},
		Store:  s.store.Snapshot(),
		Wallet: s.wallet.Initial,
		Toasts: toasts,
		Rotation: RotationSnapshot{
			Labels:   labels,
			PeriodMs: s.page.PeriodMs,
			Frame:    s.page.Frame,
		},
		Order: s.Order(),
	}
}

// SnapshotJSON encodes the hydration document.
func (s *Stack) SnapshotJSON() ([]byte, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode snapshot")
	}
	return data, nil
}
