// Package bootstrap derives the first-paint wallet state from a request's session cookie.
package bootstrap

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/junlend/web/internal/domain/wallet"
)

// Errors describing why no prior session was found. They never reach callers
// of FromCookieHeader, which maps all of them to the disconnected state.
var (
	ErrNoCookie        = errors.New("no wallet session cookie")
	ErrMalformedCookie = errors.New("malformed wallet session cookie")
	ErrNoCurrent       = errors.New("wallet session has no current connection")
)

// Config represents the wallet-library settings the cookie depends on.
type Config struct {
	StorageKey string  // Cookie is named "<StorageKey>.store"
	ChainIDs   []int64 // Supported chains, first one is the fallback
	// Reconnect seeds a found connection as reconnecting; otherwise every
	// request starts disconnected.
	Reconnect bool
}

// Bootstrapper turns cookie text into an InitialState. It holds no mutable
// state and is safe for concurrent use.
type Bootstrapper struct {
	cookieName string
	chainIDs   []int64
	reconnect  bool
}

// New creates a bootstrapper.
func New(cfg Config) *Bootstrapper {
	key := cfg.StorageKey
	if key == "" {
		key = "wagmi"
	}
	ids := make([]int64, len(cfg.ChainIDs))
	copy(ids, cfg.ChainIDs)
	return &Bootstrapper{
		cookieName: key + ".store",
		chainIDs:   ids,
		reconnect:  cfg.Reconnect,
	}
}

// CookieName returns the name of the wallet session cookie.
func (b *Bootstrapper) CookieName() string {
	return b.cookieName
}

// FromRequest derives the initial state from the request's Cookie headers.
func (b *Bootstrapper) FromRequest(r *http.Request) wallet.InitialState {
	if r == nil {
		return b.disconnected()
	}
	return b.FromCookieHeader(strings.Join(r.Header.Values("Cookie"), "; "))
}

// FromCookieHeader derives the initial state from raw Cookie header text.
// Absent or malformed cookies yield the disconnected state.
func (b *Bootstrapper) FromCookieHeader(header string) wallet.InitialState {
	state, err := b.Parse(header)
	switch {
	case err == nil:
		return state
	case errors.Is(err, ErrNoCurrent):
		// A stored session without an active connection still pins the chain.
		return state
	case errors.Is(err, ErrNoCookie):
		return b.disconnected()
	default:
		zlog.Debug().Msgf("wallet session ignored: %v", err)
		return b.disconnected()
	}
}

// Parse is FromCookieHeader with the reason for a disconnected result.
func (b *Bootstrapper) Parse(header string) (wallet.InitialState, error) {
	raw, ok := lookupCookie(header, b.cookieName)
	if !ok || raw == "" {
		return wallet.InitialState{}, ErrNoCookie
	}

	if strings.HasPrefix(raw, "%") {
		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			return wallet.InitialState{}, errors.Wrap(ErrMalformedCookie, err.Error())
		}
		raw = decoded
	}

	if !gjson.Valid(raw) {
		return wallet.InitialState{}, ErrMalformedCookie
	}
	doc := gjson.Parse(raw)
	st := doc.Get("state")
	if !st.IsObject() {
		return wallet.InitialState{}, errors.Wrap(ErrMalformedCookie, "missing state")
	}

	chainID := b.resolveChain(st.Get("chainId").Int())

	if !b.reconnect {
		return wallet.Disconnected(chainID), ErrNoCurrent
	}

	current := st.Get("current").String()
	if current == "" {
		return wallet.Disconnected(chainID), ErrNoCurrent
	}

	conn, ok := findConnection(st.Get("connections"), current)
	if !ok || len(conn.Accounts) == 0 {
		return wallet.Disconnected(chainID), errors.Wrapf(ErrNoCurrent, "connection %q not stored", current)
	}

	address, err := wallet.NormalizeAddress(conn.Accounts[0])
	if err != nil {
		return wallet.Disconnected(chainID), errors.Wrap(ErrMalformedCookie, err.Error())
	}

	return wallet.InitialState{
		Status:    wallet.StatusReconnecting,
		Address:   address,
		ChainID:   chainID,
		Connector: conn.Connector,
		Current:   current,
	}, nil
}

func (b *Bootstrapper) disconnected() wallet.InitialState {
	return wallet.Disconnected(b.fallbackChain())
}

func (b *Bootstrapper) fallbackChain() int64 {
	if len(b.chainIDs) == 0 {
		return 0
	}
	return b.chainIDs[0]
}

// resolveChain keeps a stored chain id only when it is configured.
func (b *Bootstrapper) resolveChain(id int64) int64 {
	for _, c := range b.chainIDs {
		if c == id {
			return id
		}
	}
	return b.fallbackChain()
}

// lookupCookie finds name in a Cookie header the way the wallet library does:
// split on ";" and match the "name=" prefix. Values are raw JSON, which
// net/http's cookie parser rejects.
func lookupCookie(header, name string) (string, bool) {
	prefix := name + "="
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, prefix) {
			return part[len(prefix):], true
		}
	}
	return "", false
}

// findConnection reads the serialized Map of connections
// ({"__type":"Map","value":[[uid, connection], ...]}).
func findConnection(conns gjson.Result, uid string) (wallet.Connection, bool) {
	var found wallet.Connection
	var ok bool
	conns.Get("value").ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("0").String() != uid {
			return true
		}
		c := entry.Get("1")
		for _, a := range c.Get("accounts").Array() {
			found.Accounts = append(found.Accounts, a.String())
		}
		found.ChainID = c.Get("chainId").Int()
		found.Connector = wallet.Connector{
			ID:   c.Get("connector.id").String(),
			Name: c.Get("connector.name").String(),
			Type: c.Get("connector.type").String(),
			UID:  c.Get("connector.uid").String(),
		}
		ok = true
		return false
	})
	return found, ok
}
