package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestAddressFormatFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		address      string
		wantAccepted bool
	}{
		{name: "checksummed", address: validAddress, wantAccepted: true},
		{name: "lowercase", address: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", wantAccepted: true},
		{name: "bad checksum", address: "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", wantAccepted: false},
		{name: "too short", address: "0x1234", wantAccepted: false},
		{name: "empty", address: "", wantAccepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := &AddressFormatFilter{}

			result := filter.Check(context.Background(), ConnectRequest{Address: tt.address})

			assert.Equal(t, tt.wantAccepted, result.Accepted,
				"AddressFormatFilter.Check() accepted status mismatch")
			if !tt.wantAccepted {
				assert.Equal(t, "invalid_address", result.Code)
			}
		})
	}
}

func TestSupportedChainFilter_Check(t *testing.T) {
	filter := NewSupportedChainFilter([]int64{1, 11155111})

	tests := []struct {
		name         string
		chainID      int64
		wantAccepted bool
	}{
		{name: "mainnet", chainID: 1, wantAccepted: true},
		{name: "sepolia", chainID: 11155111, wantAccepted: true},
		{name: "polygon", chainID: 137, wantAccepted: false},
		{name: "zero", chainID: 0, wantAccepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.Check(context.Background(), ConnectRequest{ChainID: tt.chainID})

			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, "unsupported_chain", result.Code)
			}
		})
	}
}

func TestConnectorAllowlistFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "valid list",
			settings: map[string]any{"connectors": []any{"injected", "walletConnect"}},
		},
		{
			name:     "missing connectors",
			settings: map[string]any{},
			wantErr:  true,
		},
		{
			name:     "empty entry",
			settings: map[string]any{"connectors": []any{""}},
			wantErr:  true,
		},
		{
			name:     "wrong type",
			settings: map[string]any{"connectors": map[string]any{"a": 1}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConnectorAllowlistFilter().ValidateConfig(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnectorAllowlistFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		settings     map[string]any
		req          ConnectRequest
		wantAccepted bool
	}{
		{
			name:         "listed id",
			settings:     map[string]any{"connectors": []any{"metaMask"}},
			req:          ConnectRequest{ConnectorID: "metamask", ConnectorType: "injected"},
			wantAccepted: true,
		},
		{
			name:         "listed type",
			settings:     map[string]any{"connectors": []any{"injected"}},
			req:          ConnectRequest{ConnectorID: "io.rabby", ConnectorType: "injected"},
			wantAccepted: true,
		},
		{
			name:         "type ignored when id only",
			settings:     map[string]any{"connectors": []any{"injected"}, "id_only": true},
			req:          ConnectRequest{ConnectorID: "io.rabby", ConnectorType: "injected"},
			wantAccepted: false,
		},
		{
			name:         "not listed",
			settings:     map[string]any{"connectors": []any{"walletConnect"}},
			req:          ConnectRequest{ConnectorID: "coinbaseWallet", ConnectorType: "coinbaseWallet"},
			wantAccepted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewConnectorAllowlistFilter()
			require.NoError(t, filter.ValidateConfig(tt.settings))

			result := filter.Check(context.Background(), tt.req)

			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, "connector_forbidden", result.Code)
			}
		})
	}
}

func TestConnectorAllowlistFilter_UnconfiguredAcceptsAll(t *testing.T) {
	result := NewConnectorAllowlistFilter().Check(context.Background(), ConnectRequest{ConnectorID: "anything"})
	assert.True(t, result.Accepted)
}

func TestChain_Execute(t *testing.T) {
	chain := NewChain()
	chain.Add(&AddressFormatFilter{})
	chain.Add(NewSupportedChainFilter([]int64{1}))

	tests := []struct {
		name     string
		req      ConnectRequest
		wantCode string
	}{
		{name: "accepted", req: ConnectRequest{Address: validAddress, ChainID: 1}},
		{name: "first rejection wins", req: ConnectRequest{Address: "nope", ChainID: 5}, wantCode: "invalid_address"},
		{name: "chain rejected", req: ConnectRequest{Address: validAddress, ChainID: 5}, wantCode: "unsupported_chain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := chain.Execute(context.Background(), tt.req)
			assert.Equal(t, tt.wantCode == "", result.Accepted)
			assert.Equal(t, tt.wantCode, result.Code)
		})
	}

	assert.Len(t, chain.Filters(), 2)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{
		"address_format_filter",
		"connector_allowlist_filter",
		"supported_chain_filter",
	}, RegisteredNames())

	for name, factory := range GetRegistered() {
		f := factory()
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.Description())
		assert.NotEmpty(t, f.ReturnCodes())
	}
}
