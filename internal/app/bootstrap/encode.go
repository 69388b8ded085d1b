package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/junlend/web/internal/domain/wallet"
)

// storeVersion is the persisted store version written by the wallet library.
const storeVersion = 2

type storedMap struct {
	Type  string `json:"__type"`
	Value [][2]any `json:"value"`
}

type storedState struct {
	Connections storedMap `json:"connections"`
	ChainID     int64     `json:"chainId"`
	Current     *string   `json:"current"`
}

type storedDoc struct {
	State   storedState `json:"state"`
	Version int         `json:"version"`
}

// Encode serializes a single active connection in the wallet library's
// cookie format. The result is percent-encoded so it is a valid cookie value.
func Encode(conn wallet.Connection) (string, error) {
	if conn.Connector.UID == "" {
		return "", errors.New("connector uid is required")
	}
	uid := conn.Connector.UID
	doc := storedDoc{
		State: storedState{
			Connections: storedMap{
				Type:  "Map",
				Value: [][2]any{{uid, conn}},
			},
			ChainID: conn.ChainID,
			Current: &uid,
		},
		Version: storeVersion,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode wallet session")
	}
	return url.QueryEscape(string(data)), nil
}

// SessionCookie builds the cookie persisting conn.
func (b *Bootstrapper) SessionCookie(conn wallet.Connection, maxAge int, secure bool) (*http.Cookie, error) {
	value, err := Encode(conn)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     b.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie builds the cookie that removes the stored session.
func (b *Bootstrapper) ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     b.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
