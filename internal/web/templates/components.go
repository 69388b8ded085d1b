package templates

import (
	"encoding/json"

	"github.com/junlend/web/internal/app/rotation"
	"github.com/junlend/web/internal/domain/theme"
)

var homeHighlights = []string{"Guaranteed better rates", "Liquidation protection"}

func themeIcon(p theme.Preference) string {
	switch p {
	case theme.Light:
		return "☀"
	case theme.Dark:
		return "☾"
	default:
		return "◐"
	}
}

// transitionJSON encodes the label transition for the data-transition attribute.
func transitionJSON(t rotation.Transition) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
