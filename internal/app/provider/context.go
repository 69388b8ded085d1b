package provider

import (
	"context"

	"github.com/junlend/web/internal/app/store"
	"github.com/junlend/web/internal/domain/theme"
)

type (
	themeKey   struct{}
	storeKey   struct{}
	walletKey  struct{}
	toasterKey struct{}
	pageKey    struct{}
)

// Theme returns the installed theme scope, or the system default.
func Theme(ctx context.Context) ThemeScope {
	if v, ok := ctx.Value(themeKey{}).(ThemeScope); ok {
		return v
	}
	return ThemeScope{Preference: theme.System, Attribute: "class"}
}

// Store returns the installed atom store. Outside a stack it returns a fresh
// store so reads see atom defaults.
func Store(ctx context.Context) *store.Store {
	if v, ok := ctx.Value(storeKey{}).(*store.Store); ok {
		return v
	}
	return store.New()
}

// Wallet returns the installed wallet scope.
func Wallet(ctx context.Context) WalletScope {
	v, _ := ctx.Value(walletKey{}).(WalletScope)
	return v
}

// Toaster returns the installed toaster scope.
func Toaster(ctx context.Context) ToasterScope {
	v, _ := ctx.Value(toasterKey{}).(ToasterScope)
	return v
}

// Page returns the installed page scope.
func Page(ctx context.Context) PageScope {
	v, _ := ctx.Value(pageKey{}).(PageScope)
	return v
}

// Installed reports whether a stack was installed in ctx.
func Installed(ctx context.Context) bool {
	_, ok := ctx.Value(themeKey{}).(ThemeScope)
	return ok
}
