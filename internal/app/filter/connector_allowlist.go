package filter

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// ConnectorAllowlistConfig represents the configuration for ConnectorAllowlistFilter.
type ConnectorAllowlistConfig struct {
	Connectors []string `yaml:"connectors" mapstructure:"connectors" validate:"min=1,dive,required"`
	// IDOnly disables matching on the connector type.
	IDOnly bool `yaml:"id_only" mapstructure:"id_only"`
}

// ConnectorAllowlistFilter only accepts listed wallet connectors.
type ConnectorAllowlistFilter struct {
	config *ConnectorAllowlistConfig
}

// NewConnectorAllowlistFilter creates a new connector allowlist filter.
// It accepts every connector until ValidateConfig succeeds.
func NewConnectorAllowlistFilter() *ConnectorAllowlistFilter {
	return &ConnectorAllowlistFilter{}
}

func (f *ConnectorAllowlistFilter) Name() string {
	return "connector_allowlist_filter"
}

func (f *ConnectorAllowlistFilter) Description() string {
	return "Only accepts connections from listed wallet connectors"
}

func (f *ConnectorAllowlistFilter) ReturnCodes() []string {
	return []string{"connector_forbidden"}
}

func (f *ConnectorAllowlistFilter) ValidateConfig(settings map[string]any) error {
	var config ConnectorAllowlistConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	for i, c := range config.Connectors {
		config.Connectors[i] = strings.ToLower(strings.TrimSpace(c))
	}
	f.config = &config
	zlog.Info().Msgf("connector allowlist filter config: %+v", config)
	return nil
}

func (f *ConnectorAllowlistFilter) Check(ctx context.Context, req ConnectRequest) Result {
	if f.config == nil {
		return Accept()
	}
	id := strings.ToLower(req.ConnectorID)
	typ := strings.ToLower(req.ConnectorType)
	for _, allowed := range f.config.Connectors {
		if allowed == id || (!f.config.IDOnly && typ != "" && allowed == typ) {
			return Accept()
		}
	}
	return Reject("connector_forbidden")
}

func init() {
	Register("connector_allowlist_filter", func() Filter {
		return NewConnectorAllowlistFilter()
	})
}
